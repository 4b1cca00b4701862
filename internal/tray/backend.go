package tray

import "fyne.io/systray"

// backend is the slice of the systray API the tray uses.
type backend interface {
	run(onReady, onExit func()) (start, end func())
	setIcon(icon []byte)
	setTooltip(tooltip string)
	setOnTapped(fn func())
	addItem(label, tooltip string) <-chan struct{}
	addSeparator()
}

type systrayBackend struct{}

func (systrayBackend) run(onReady, onExit func()) (start, end func()) {
	return systray.RunWithExternalLoop(onReady, onExit)
}

func (systrayBackend) setIcon(icon []byte) { systray.SetIcon(icon) }

func (systrayBackend) setTooltip(tooltip string) { systray.SetTooltip(tooltip) }

// Setting a tap handler makes left click toggle instead of opening the menu.
func (systrayBackend) setOnTapped(fn func()) { systray.SetOnTapped(fn) }

func (systrayBackend) addItem(label, tooltip string) <-chan struct{} {
	return systray.AddMenuItem(label, tooltip).ClickedCh
}

func (systrayBackend) addSeparator() { systray.AddSeparator() }
