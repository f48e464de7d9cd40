package textrope

// Panicking forms of the fallible operations, for callers that have
// already established their indices are valid.

// MustFromString creates a rope from s, panicking on invalid UTF-8.
func MustFromString(s string) Rope {
	r, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return r
}

// MustInsert is Insert, panicking on error.
func (r *Rope) MustInsert(byteIdx int, text string) {
	if err := r.Insert(byteIdx, text); err != nil {
		panic(err)
	}
}

// MustRemove is Remove, panicking on error.
func (r *Rope) MustRemove(start, end int) {
	if err := r.Remove(start, end); err != nil {
		panic(err)
	}
}

// MustEdit is Edit, panicking on error.
func (r *Rope) MustEdit(start, end int, text string) {
	if err := r.Edit(start, end, text); err != nil {
		panic(err)
	}
}

// MustSplitOff is SplitOff, panicking on error.
func (r *Rope) MustSplitOff(byteIdx int) Rope {
	out, err := r.SplitOff(byteIdx)
	if err != nil {
		panic(err)
	}
	return out
}

// MustByteToChar is ByteToChar, panicking on error.
func (r *Rope) MustByteToChar(byteIdx int) int {
	v, err := r.ByteToChar(byteIdx)
	if err != nil {
		panic(err)
	}
	return v
}

// MustCharToByte is CharToByte, panicking on error.
func (r *Rope) MustCharToByte(charIdx int) int {
	v, err := r.CharToByte(charIdx)
	if err != nil {
		panic(err)
	}
	return v
}

// MustByteToUTF16 is ByteToUTF16, panicking on error.
func (r *Rope) MustByteToUTF16(byteIdx int) int {
	v, err := r.ByteToUTF16(byteIdx)
	if err != nil {
		panic(err)
	}
	return v
}

// MustUTF16ToByte is UTF16ToByte, panicking on error.
func (r *Rope) MustUTF16ToByte(u16Idx int) int {
	v, err := r.UTF16ToByte(u16Idx)
	if err != nil {
		panic(err)
	}
	return v
}

// MustByteToLine is ByteToLine, panicking on error.
func (r *Rope) MustByteToLine(byteIdx int, t LineType) int {
	v, err := r.ByteToLine(byteIdx, t)
	if err != nil {
		panic(err)
	}
	return v
}

// MustLineToByte is LineToByte, panicking on error.
func (r *Rope) MustLineToByte(lineIdx int, t LineType) int {
	v, err := r.LineToByte(lineIdx, t)
	if err != nil {
		panic(err)
	}
	return v
}

// MustByte is Byte, panicking on error.
func (r *Rope) MustByte(byteIdx int) byte {
	v, err := r.Byte(byteIdx)
	if err != nil {
		panic(err)
	}
	return v
}

// MustCharAtByte is CharAtByte, panicking on error.
func (r *Rope) MustCharAtByte(byteIdx int) rune {
	v, err := r.CharAtByte(byteIdx)
	if err != nil {
		panic(err)
	}
	return v
}

// MustLine is Line, panicking on error.
func (r *Rope) MustLine(lineIdx int, t LineType) RopeSlice {
	v, err := r.Line(lineIdx, t)
	if err != nil {
		panic(err)
	}
	return v
}

// MustSlice is Slice, panicking on error.
func (r *Rope) MustSlice(start, end int) RopeSlice {
	v, err := r.Slice(start, end)
	if err != nil {
		panic(err)
	}
	return v
}
