package glow

import (
	"github.com/emberplus/emberplus/errs"
	"github.com/emberplus/emberplus/oid"
)

// CommandType is the verb a Command carries.
type CommandType int

const (
	CommandSubscribe    CommandType = 30
	CommandUnsubscribe  CommandType = 31
	CommandGetDirectory CommandType = 32
	CommandInvoke       CommandType = 33
)

// FieldFlags selects which GetDirectory response fields a consumer wants.
type FieldFlags int

const (
	FieldFlagsSpare       FieldFlags = -2
	FieldFlagsAll         FieldFlags = -1
	FieldFlagsDefault     FieldFlags = 0
	FieldFlagsIdentifier  FieldFlags = 1
	FieldFlagsDescription FieldFlags = 2
	FieldFlagsTree        FieldFlags = 3
	FieldFlagsValue       FieldFlags = 4
	FieldFlagsConnections FieldFlags = 5
)

// Command is a GetDirectory/Subscribe/Unsubscribe/Invoke request. It is not
// addressed by a child number or a path of its own; it always appears as a
// RootElement or ElementCollection member describing an action to take on
// its containing element.
type Command struct {
	Number          CommandType
	DirFieldMask    FieldFlags
	HasDirFieldMask bool
	Invocation      Invocation
	HasInvocation   bool
}

func (c *Command) ElementNumber() (int, bool)    { return 0, false }
func (c *Command) ElementPath() (oid.OID, bool)  { return nil, false }
func (c *Command) isElement()                    {}

// NewGetDirectoryCommand builds a GetDirectory request for every field.
func NewGetDirectoryCommand() *Command {
	return &Command{Number: CommandGetDirectory, DirFieldMask: FieldFlagsAll, HasDirFieldMask: true}
}

// NewSubscribeCommand builds a Subscribe request.
func NewSubscribeCommand() *Command { return &Command{Number: CommandSubscribe} }

// NewUnsubscribeCommand builds an Unsubscribe request.
func NewUnsubscribeCommand() *Command { return &Command{Number: CommandUnsubscribe} }

// NewInvokeCommand builds an Invoke request carrying invocation.
func NewInvokeCommand(invocation Invocation) *Command {
	return &Command{Number: CommandInvoke, Invocation: invocation, HasInvocation: true}
}

func (c *Command) Encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(c.Number)))

	switch {
	case c.HasDirFieldMask:
		w.put(1, true, encodeInteger(int64(c.DirFieldMask)))
	case c.HasInvocation:
		w.put(1, true, c.Invocation.Encode())
	}

	return wrapTag(appTag(tagCommand), w.bytes())
}

func decodeCommand(r *Reader) (*Command, error) {
	sub, err := r.Open(appTag(tagCommand))
	if err != nil {
		return nil, err
	}

	c := &Command{}

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			i, err := r.DecodeInteger()
			c.Number = CommandType(i)
			return err
		},
		ctxTag(1): func(r *Reader) error {
			tag, err := r.PeekTag()
			if err != nil {
				return err
			}

			switch tag {
			case tagInteger:
				i, err := r.DecodeInteger()
				c.DirFieldMask, c.HasDirFieldMask = FieldFlags(i), true
				return err
			case appTag(tagInvocation):
				inv, err := decodeInvocation(r)
				c.Invocation, c.HasInvocation = inv, true
				return err
			default:
				return errs.Newf(errs.BerDecode, "unrecognized Command options tag %#02x", tag)
			}
		},
	})

	return c, err
}
