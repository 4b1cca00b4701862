//go:build darwin

package wm

/*
#cgo CFLAGS: -x objective-c -fmodules -fobjc-arc
#cgo LDFLAGS: -framework Cocoa -framework CoreGraphics

#import <Cocoa/Cocoa.h>
#import <CoreGraphics/CoreGraphics.h>

// Private CoreGraphics Services (SkyLight) calls.
typedef int CGSConnectionID;
typedef uint64_t CGSSpaceID;
extern CGSConnectionID CGSMainConnectionID(void);
extern CGSSpaceID CGSGetActiveSpace(CGSConnectionID cid);
extern void CGSAddWindowsToSpaces(CGSConnectionID cid, CFArrayRef windows, CFArrayRef spaces);

// Above NSPopUpMenuWindowLevel so full-screen apps do not cover the overlay.
static const NSInteger kOverlayWindowLevel = 101;

static void wmOnMain(dispatch_block_t block) {
    if ([NSThread isMainThread]) {
        block();
    } else {
        dispatch_sync(dispatch_get_main_queue(), block);
    }
}

static NSWindow *wmFindWindow(void) {
    if (NSApp == nil) {
        return nil;
    }
    Class wailsWindow = NSClassFromString(@"WailsWindow");
    for (NSWindow *w in [NSApp windows]) {
        if (wailsWindow != nil && [w isKindOfClass:wailsWindow]) {
            return w;
        }
    }
    for (NSWindow *w in [NSApp windows]) {
        if ([w canBecomeMainWindow]) {
            return w;
        }
    }
    return nil;
}

static double wmPrimaryHeight(void) {
    __block double height = 0;
    wmOnMain(^{
        NSArray<NSScreen *> *screens = [NSScreen screens];
        if (screens.count > 0) {
            height = screens[0].frame.size.height;
        }
    });
    return height;
}

static void wmCursor(double *x, double *y) {
    __block NSPoint p;
    wmOnMain(^{
        p = [NSEvent mouseLocation];
    });
    *x = p.x;
    *y = p.y;
}

static int wmScreenCount(void) {
    __block int count = 0;
    wmOnMain(^{
        count = (int)[NSScreen screens].count;
    });
    return count;
}

static int wmScreenVisibleFrame(int index, double *x, double *y, double *w, double *h) {
    __block int ok = 0;
    __block NSRect r;
    wmOnMain(^{
        NSArray<NSScreen *> *screens = [NSScreen screens];
        if (index >= 0 && index < (int)screens.count) {
            r = screens[index].visibleFrame;
            ok = 1;
        }
    });
    if (ok) {
        *x = r.origin.x;
        *y = r.origin.y;
        *w = r.size.width;
        *h = r.size.height;
    }
    return ok;
}

static int wmWindowFrame(double *x, double *y, double *w, double *h) {
    __block int ok = 0;
    __block NSRect r;
    wmOnMain(^{
        NSWindow *win = wmFindWindow();
        if (win != nil) {
            r = win.frame;
            ok = 1;
        }
    });
    if (ok) {
        *x = r.origin.x;
        *y = r.origin.y;
        *w = r.size.width;
        *h = r.size.height;
    }
    return ok;
}

// Returns -1 when the window is missing, otherwise 0/1.
static int wmWindowVisible(void) {
    __block int state = -1;
    wmOnMain(^{
        NSWindow *win = wmFindWindow();
        if (win != nil) {
            state = (win.isVisible && !win.isMiniaturized) ? 1 : 0;
        }
    });
    return state;
}

static int wmWindowFocused(void) {
    __block int state = -1;
    wmOnMain(^{
        NSWindow *win = wmFindWindow();
        if (win != nil) {
            state = (win.isKeyWindow && [NSApp isActive]) ? 1 : 0;
        }
    });
    return state;
}

static int wmSetTopLeft(double x, double y, double primaryHeight) {
    __block int ok = 0;
    wmOnMain(^{
        NSWindow *win = wmFindWindow();
        if (win != nil) {
            [win setFrameTopLeftPoint:NSMakePoint(x, primaryHeight - y)];
            ok = 1;
        }
    });
    return ok;
}

static int wmFocus(void) {
    __block int ok = 0;
    wmOnMain(^{
        NSWindow *win = wmFindWindow();
        if (win != nil) {
            [NSApp activateIgnoringOtherApps:YES];
            [win orderFrontRegardless];
            [win makeKeyAndOrderFront:nil];
            ok = 1;
        }
    });
    return ok;
}

static int wmSetFloating(int onTop) {
    __block int ok = 0;
    wmOnMain(^{
        NSWindow *win = wmFindWindow();
        if (win != nil) {
            win.level = onTop ? NSFloatingWindowLevel : NSNormalWindowLevel;
            ok = 1;
        }
    });
    return ok;
}

static int wmSetJoinAllSpaces(int join) {
    __block int ok = 0;
    wmOnMain(^{
        NSWindow *win = wmFindWindow();
        if (win != nil) {
            NSWindowCollectionBehavior b = win.collectionBehavior;
            if (join) {
                b &= ~NSWindowCollectionBehaviorMoveToActiveSpace;
                b |= NSWindowCollectionBehaviorCanJoinAllSpaces;
            } else {
                b &= ~NSWindowCollectionBehaviorCanJoinAllSpaces;
            }
            win.collectionBehavior = b;
            ok = 1;
        }
    });
    return ok;
}

// CanJoinAllSpaces conflicts with MoveToActiveSpace and is cleared here.
static int wmSetOverlayLevel(void) {
    __block int ok = 0;
    wmOnMain(^{
        NSWindow *win = wmFindWindow();
        if (win != nil) {
            win.level = kOverlayWindowLevel;
            NSWindowCollectionBehavior b = win.collectionBehavior;
            b &= ~NSWindowCollectionBehaviorCanJoinAllSpaces;
            b |= NSWindowCollectionBehaviorFullScreenAuxiliary | NSWindowCollectionBehaviorMoveToActiveSpace;
            win.collectionBehavior = b;
            ok = 1;
        }
    });
    return ok;
}

static long wmWindowNumber(void) {
    __block long number = 0;
    wmOnMain(^{
        NSWindow *win = wmFindWindow();
        if (win != nil) {
            number = (long)win.windowNumber;
        }
    });
    return number;
}

// Returns 0 on success, -1 when no active space is reported.
static int wmAttachWindowToActiveSpace(uint32_t windowID) {
    CGSConnectionID cid = CGSMainConnectionID();
    CGSSpaceID space = CGSGetActiveSpace(cid);
    if (space == 0) {
        return -1;
    }
    NSArray *windows = @[@(windowID)];
    NSArray *spaces = @[@(space)];
    CGSAddWindowsToSpaces(cid, (__bridge CFArrayRef)windows, (__bridge CFArrayRef)spaces);
    return 0;
}
*/
import "C"

import (
	"errors"
	"fmt"

	"freecastnotes/internal/geometry"
)

type platform struct{}

func openPlatform() *platform { return &platform{} }

func (*platform) supported() bool { return true }

func (*platform) spacesAvailable() bool {
	return C.wmWindowNumber() > 0
}

func (*platform) primaryHeight() (float64, error) {
	h := float64(C.wmPrimaryHeight())
	if h <= 0 {
		return 0, errors.New("no screens reported")
	}
	return h, nil
}

func (p *platform) cursor() (geometry.Point, error) {
	h, err := p.primaryHeight()
	if err != nil {
		return geometry.Point{}, err
	}
	var x, y C.double
	C.wmCursor(&x, &y)
	return flipPoint(float64(x), float64(y), h), nil
}

func (p *platform) workAreas() ([]geometry.WorkArea, error) {
	h, err := p.primaryHeight()
	if err != nil {
		return nil, err
	}
	count := int(C.wmScreenCount())
	areas := make([]geometry.WorkArea, 0, count)
	for i := range count {
		var x, y, w, hh C.double
		if C.wmScreenVisibleFrame(C.int(i), &x, &y, &w, &hh) == 0 {
			continue
		}
		areas = append(areas, flipRect(float64(x), float64(y), float64(w), float64(hh), h))
	}
	return areas, nil
}

func (p *platform) frame() (geometry.WorkArea, error) {
	h, err := p.primaryHeight()
	if err != nil {
		return geometry.WorkArea{}, err
	}
	var x, y, w, hh C.double
	if C.wmWindowFrame(&x, &y, &w, &hh) == 0 {
		return geometry.WorkArea{}, ErrWindowNotFound
	}
	return flipRect(float64(x), float64(y), float64(w), float64(hh), h), nil
}

func (*platform) visible() (bool, error) {
	return triState(C.wmWindowVisible())
}

func (*platform) focused() (bool, error) {
	return triState(C.wmWindowFocused())
}

func triState(v C.int) (bool, error) {
	if v < 0 {
		return false, ErrWindowNotFound
	}
	return v == 1, nil
}

func (p *platform) setPosition(x, y int) error {
	h, err := p.primaryHeight()
	if err != nil {
		return err
	}
	return found(C.wmSetTopLeft(C.double(x), C.double(y), C.double(h)))
}

func (*platform) focus() error { return found(C.wmFocus()) }

func (*platform) setAlwaysOnTop(onTop bool) error {
	return found(C.wmSetFloating(cBool(onTop)))
}

func (*platform) setAllWorkspaces(visible bool) error {
	return found(C.wmSetJoinAllSpaces(cBool(visible)))
}

func (*platform) setOverlayLevel() error { return found(C.wmSetOverlayLevel()) }

func (*platform) attachToActiveSpace() error {
	number := int64(C.wmWindowNumber())
	if number <= 0 {
		return ErrWindowNotFound
	}
	return attachWindowToActiveSpace(uint32(number))
}

// attachWindowToActiveSpace is the only entry point to the private
// CoreGraphics Services space API.
func attachWindowToActiveSpace(windowID uint32) error {
	if windowID == 0 {
		return ErrWindowNotFound
	}
	if rc := C.wmAttachWindowToActiveSpace(C.uint32_t(windowID)); rc != 0 {
		return fmt.Errorf("attach window %d to active space: invalid active space", windowID)
	}
	return nil
}

func (*platform) close() error { return nil }

func found(ok C.int) error {
	if ok == 0 {
		return ErrWindowNotFound
	}
	return nil
}

func cBool(v bool) C.int {
	if v {
		return 1
	}
	return 0
}
