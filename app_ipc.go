package main

import "freecastnotes/internal/ipc"

// ipcHandler answers requests from later launches of the binary.
func (a *App) ipcHandler() ipc.Handler {
	return ipc.CommandHandler{
		ipc.CommandToggle: func() error {
			a.toggleOverlay("second-instance")
			return nil
		},
		ipc.CommandShow: a.ShowWindow,
		ipc.CommandPing: func() error { return nil },
	}
}
