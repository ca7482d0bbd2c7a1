package glow

// StreamEntry carries one stream-subscribed parameter's current value.
type StreamEntry struct {
	StreamIdentifier int
	StreamValue      Value
}

func (s StreamEntry) encode() []byte {
	var w fieldWriter
	w.put(0, true, encodeInteger(int64(s.StreamIdentifier)))
	w.put(1, true, s.StreamValue.encode())

	return wrapTag(appTag(tagStreamEntry), w.bytes())
}

func decodeStreamEntry(r *Reader) (StreamEntry, error) {
	sub, err := r.Open(appTag(tagStreamEntry))
	if err != nil {
		return StreamEntry{}, err
	}

	var s StreamEntry

	err = decodeFields(sub, map[byte]func(*Reader) error{
		ctxTag(0): func(r *Reader) error {
			i, err := r.DecodeInteger()
			s.StreamIdentifier = int(i)
			return err
		},
		ctxTag(1): func(r *Reader) error {
			v, err := decodeValue(r)
			s.StreamValue = v
			return err
		},
	})

	return s, err
}

func encodeStreamCollection(entries []StreamEntry) []byte {
	var content []byte
	for _, e := range entries {
		content = append(content, e.encode()...)
	}

	return wrapTag(appTag(tagStreamCollection), content)
}

func decodeStreamCollection(r *Reader) ([]StreamEntry, error) {
	sub, err := r.Open(appTag(tagStreamCollection))
	if err != nil {
		return nil, err
	}

	var out []StreamEntry
	for !sub.AtEnd() {
		e, err := decodeStreamEntry(sub)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}
