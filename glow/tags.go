// Package glow implements the BER-tagged Ember+ data model (Node,
// Parameter, Matrix, Function, Template; qualified and unqualified
// variants; Command, StreamEntry, InvocationResult) and its encoder and
// decoder.
package glow

// Universal-class primitive tags used throughout Glow.
const (
	tagBoolean     = 0x01
	tagInteger     = 0x02
	tagOctetString = 0x04
	tagNull        = 0x05
	tagReal        = 0x09
	tagUTF8String  = 0x0C
	tagRelativeOID = 0x0D

	tagSequence = 0x30 // universal SEQUENCE (OF), constructed
	tagSet      = 0x31 // universal SET, constructed
)

const (
	classApplication = 0x60 // constructed APPLICATION
	classContext     = 0xA0 // constructed CONTEXT
)

func appTag(n byte) byte { return classApplication | n }
func ctxTag(n byte) byte { return classContext | n }

// APPLICATION tag numbers, per the Glow schema's tag table.
const (
	tagRoot                  = 0
	tagParameter             = 1
	tagCommand               = 2
	tagNode                  = 3
	tagElementCollection     = 4
	tagStreamEntry           = 5
	tagStreamCollection      = 6
	tagStringIntegerPair     = 7
	tagStringIntegerColl     = 8
	tagQualifiedParameter    = 9
	tagQualifiedNode         = 10
	tagRootElementCollection = 11
	tagStreamDescription     = 12
	tagMatrix                = 13
	tagTarget                = 14
	tagSource                = 15
	tagConnection            = 16
	tagQualifiedMatrix       = 17
	tagLabel                 = 18
	tagFunction              = 19
	tagQualifiedFunction     = 20
	tagTupleItemDescription  = 21
	tagInvocation            = 22
	tagInvocationResult      = 23
	tagTemplate              = 24
	tagQualifiedTemplate     = 25
)
