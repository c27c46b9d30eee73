package io

import (
	"io"
	"log"
	"sync"
	"time"
)

// KEY_HOLD is the default time a key stays held after its last keystroke.
// Terminals report presses only, so a key is released by its absence.
const KEY_HOLD = 150 * time.Millisecond

// KeyMap maps the 4x4 block of a QWERTY keyboard onto the hex key pad.
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var KeyMap = map[byte]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

const keyEscape = 0x1b

// StreamKeypad is a key pad fed by keystrokes from a byte stream.
type StreamKeypad struct {
	Verbose bool
	Input   io.Reader        // Keystroke source.
	Hold    time.Duration    // Hold time per keystroke, KEY_HOLD if zero.
	Now     func() time.Time // Clock, time.Now if nil.
	Quit    func()           // Called on the escape key, if set.

	mutex sync.Mutex
	held  [16]time.Time
	err   error
	done  chan struct{}
}

var _ Keypad = (*StreamKeypad)(nil)

func (kp *StreamKeypad) now() time.Time {
	if kp.Now == nil {
		return time.Now()
	}
	return kp.Now()
}

func (kp *StreamKeypad) hold() time.Duration {
	if kp.Hold == 0 {
		return KEY_HOLD
	}
	return kp.Hold
}

// Start reads keystrokes from Input in the background until it fails.
func (kp *StreamKeypad) Start() {
	kp.mutex.Lock()
	kp.done = make(chan struct{})
	kp.mutex.Unlock()

	go func() {
		defer close(kp.done)

		var buf [16]byte
		for {
			n, err := kp.Input.Read(buf[:])
			for _, ch := range buf[:n] {
				kp.Keystroke(ch)
			}
			if err != nil {
				kp.mutex.Lock()
				kp.err = err
				kp.mutex.Unlock()
				return
			}
		}
	}()
}

// Done is closed when the input stream ends.
func (kp *StreamKeypad) Done() <-chan struct{} {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()
	return kp.done
}

// Err returns the error that ended the input stream.
func (kp *StreamKeypad) Err() error {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()
	return kp.err
}

// Keystroke handles a single byte of input.
func (kp *StreamKeypad) Keystroke(ch byte) {
	if ch == keyEscape {
		if kp.Quit != nil {
			kp.Quit()
		}
		return
	}

	if ch >= 'A' && ch <= 'Z' {
		ch += 'a' - 'A'
	}

	key, ok := KeyMap[ch]
	if !ok {
		return
	}

	if kp.Verbose {
		log.Printf("keypad: %q -> %X", ch, key)
	}

	kp.Press(key)
}

// Press marks a key as held.
func (kp *StreamKeypad) Press(key int) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	kp.held[key&0xf] = kp.now()
}

// Keys returns the keys pressed within the hold time.
func (kp *StreamKeypad) Keys() (keys [16]bool) {
	kp.mutex.Lock()
	defer kp.mutex.Unlock()

	now := kp.now()
	for n, when := range kp.held {
		keys[n] = !when.IsZero() && now.Sub(when) < kp.hold()
	}

	return
}
