package fsmtable

import "errors"

var (
	// ErrMalformedTable is wrapped by every table construction failure.
	ErrMalformedTable = errors.New("malformed transition table")

	// ErrUnknownState marks a reference to a state the table does not declare.
	ErrUnknownState = errors.New("unknown state")

	// ErrUnknownEvent marks a reference to an event the table does not declare.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrAlreadyStarted is returned by Start on a started machine.
	ErrAlreadyStarted = errors.New("machine already started")

	// ErrReentrantDispatch is the panic value when a hook, guard, action or
	// observer dispatches on the machine that is calling it.
	ErrReentrantDispatch = errors.New("reentrant dispatch")
)
