package redis

import "time"

// command is what a Channel's in-flight FIFO holds: something that can
// accept a RESP reply (possibly more than one, for askingCommand) and
// report whether it has now seen every reply it expects.
type command interface {
	// requestBytes returns the pre-encoded request to write to the socket.
	requestBytes() []byte
	// receive delivers one parsed reply. It returns true once the command
	// has consumed every reply it expects and should be popped off the
	// in-flight FIFO.
	receive(v RespValue) (done bool)
	// closeWith unblocks any waiter with err instead of a reply. Called by
	// the Channel for every command still in the FIFO on shutdown or fatal
	// read error. A command is closed at most once; a receive that arrives
	// after close (a late reply following a local timeout) is a no-op.
	closeWith(err error)
}

// simpleCommand is an immutable request paired with a single-assignment
// response slot. One caller creates it, enqueues it on a Channel, and
// consumes the result exactly once via wait.
type simpleCommand struct {
	request []byte
	slot    chan cmdResult
	done    chan struct{} // closed exactly once, guards single assignment
}

type cmdResult struct {
	value RespValue
	err   error
}

func newSimpleCommand(req []byte) *simpleCommand {
	return &simpleCommand{
		request: req,
		slot:    make(chan cmdResult, 1),
		done:    make(chan struct{}),
	}
}

func (c *simpleCommand) requestBytes() []byte { return c.request }

func (c *simpleCommand) receive(v RespValue) bool {
	select {
	case <-c.done:
		return true // already closed or delivered; late reply is a no-op
	default:
	}
	close(c.done)
	c.slot <- cmdResult{value: v}
	return true
}

func (c *simpleCommand) closeWith(err error) {
	select {
	case <-c.done:
		return
	default:
	}
	close(c.done)
	c.slot <- cmdResult{err: err}
}

// wait blocks up to timeout for the response. It fails with ErrTimeout on
// expiry and with whatever closeWith recorded (ErrClosed, errConnLost, ...)
// if the channel shut the command down first. A non-positive timeout blocks
// indefinitely.
func (c *simpleCommand) wait(timeout time.Duration) (RespValue, error) {
	if timeout <= 0 {
		r := <-c.slot
		return r.value, r.err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-c.slot:
		return r.value, r.err
	case <-timer.C:
		return RespValue{}, ErrTimeout
	}
}

// askingFrame is the fixed RESP encoding of a bare ASKING command.
var askingFrame = []byte("*1\r\n$6\r\nASKING\r\n")

// askingCommand prefixes a wrapped command's request with an ASKING frame,
// per the cluster ASK redirect: one FIFO entry now expects two replies. The
// first (the ASKING acknowledgement) is swallowed; an error there is fatal
// and closes the wrapped command instead of forwarding it a reply. The
// second reply is handed to the wrapped command untouched.
type askingCommand struct {
	wrapped    command
	request    []byte
	ackArrived bool
}

func newAskingCommand(wrapped command) *askingCommand {
	req := make([]byte, 0, len(askingFrame)+len(wrapped.requestBytes()))
	req = append(req, askingFrame...)
	req = append(req, wrapped.requestBytes()...)
	return &askingCommand{wrapped: wrapped, request: req}
}

func (c *askingCommand) requestBytes() []byte { return c.request }

func (c *askingCommand) receive(v RespValue) bool {
	if !c.ackArrived {
		c.ackArrived = true
		if v.IsError {
			c.wrapped.closeWith(ServerError(v.Text))
			return true
		}
		return false // still awaiting the wrapped command's own reply
	}
	return c.wrapped.receive(v)
}

func (c *askingCommand) closeWith(err error) {
	c.wrapped.closeWith(err)
}
