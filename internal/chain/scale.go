package chain

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// GrandpaEngineID tags GRANDPA justifications.
var GrandpaEngineID = [4]byte{'F', 'R', 'N', 'K'}

var errShortInput = errors.New("scale: unexpected end of input")

// DecodeHex decodes a 0x prefixed hex string.
func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decode hex %q: %w", s, err)
	}
	return b, nil
}

// EncodeHex encodes b as a 0x prefixed hex string.
func EncodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// ParseNumber parses a hex encoded block number.
func ParseNumber(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse block number %q: %w", s, err)
	}
	return n, nil
}

// AppendCompact appends the SCALE compact encoding of v.
func AppendCompact(dst []byte, v uint64) []byte {
	switch {
	case v < 1<<6:
		return append(dst, byte(v)<<2)
	case v < 1<<14:
		return binary.LittleEndian.AppendUint16(dst, uint16(v)<<2|0b01)
	case v < 1<<30:
		return binary.LittleEndian.AppendUint32(dst, uint32(v)<<2|0b10)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	n := 8
	for n > 4 && buf[n-1] == 0 {
		n--
	}
	dst = append(dst, byte(n-4)<<2|0b11)
	return append(dst, buf[:n]...)
}

// DecodeCompact reads a SCALE compact integer and returns it with the bytes consumed.
func DecodeCompact(src []byte) (uint64, int, error) {
	if len(src) == 0 {
		return 0, 0, errShortInput
	}
	switch src[0] & 0b11 {
	case 0b00:
		return uint64(src[0] >> 2), 1, nil
	case 0b01:
		if len(src) < 2 {
			return 0, 0, errShortInput
		}
		return uint64(binary.LittleEndian.Uint16(src) >> 2), 2, nil
	case 0b10:
		if len(src) < 4 {
			return 0, 0, errShortInput
		}
		return uint64(binary.LittleEndian.Uint32(src) >> 2), 4, nil
	}
	n := int(src[0]>>2) + 4
	if n > 8 {
		return 0, 0, fmt.Errorf("scale: compact integer of %d bytes overflows uint64", n)
	}
	if len(src) < 1+n {
		return 0, 0, errShortInput
	}
	var buf [8]byte
	copy(buf[:], src[1:1+n])
	return binary.LittleEndian.Uint64(buf[:]), 1 + n, nil
}

// EncodeHeader produces the SCALE encoding of a header.
func EncodeHeader(h Header) ([]byte, error) {
	number, err := ParseNumber(h.Number)
	if err != nil {
		return nil, err
	}

	parentHash, err := DecodeHex(h.ParentHash)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 128)
	out = append(out, parentHash...)
	out = AppendCompact(out, number)
	for _, field := range []string{h.StateRoot, h.ExtrinsicsRoot} {
		b, err := DecodeHex(field)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	out = AppendCompact(out, uint64(len(h.Digest.Logs)))
	for _, item := range h.Digest.Logs {
		b, err := DecodeHex(item)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// EncodeBody produces the SCALE encoding of a list of encoded extrinsics.
func EncodeBody(extrinsics []string) ([]byte, error) {
	out := AppendCompact(nil, uint64(len(extrinsics)))
	for _, xt := range extrinsics {
		b, err := DecodeHex(xt)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// HeadNumber extracts the block number from para head data: a length
// prefixed header starting with a 32 byte parent hash.
func HeadNumber(headData []byte) (uint64, []byte, error) {
	size, read, err := DecodeCompact(headData)
	if err != nil {
		return 0, nil, fmt.Errorf("head data length: %w", err)
	}
	header := headData[read:]
	if uint64(len(header)) < size || size < 33 {
		return 0, nil, fmt.Errorf("head data of %d bytes is too short", len(header))
	}
	header = header[:size]
	number, _, err := DecodeCompact(header[32:])
	if err != nil {
		return 0, nil, fmt.Errorf("head number: %w", err)
	}
	return number, header, nil
}

// Uint64LE decodes a little endian u64 storage value.
func Uint64LE(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, fmt.Errorf("u64 value of %d bytes", len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}

// UnmarshalJSON accepts [engine, data] where both sides are hex strings or byte arrays.
func (j *Justification) UnmarshalJSON(raw []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil {
		return fmt.Errorf("decode justification: %w", err)
	}
	engine, err := jsonBytes(pair[0])
	if err != nil {
		return err
	}
	if len(engine) != 4 {
		return fmt.Errorf("engine id of %d bytes", len(engine))
	}
	data, err := jsonBytes(pair[1])
	if err != nil {
		return err
	}
	copy(j.EngineID[:], engine)
	j.Data = data
	return nil
}

func jsonBytes(raw json.RawMessage) ([]byte, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return DecodeHex(s)
	}
	var nums []uint16
	if err := json.Unmarshal(raw, &nums); err != nil {
		return nil, fmt.Errorf("decode byte array: %w", err)
	}
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n > 0xff {
			return nil, fmt.Errorf("byte array value %d out of range", n)
		}
		out[i] = byte(n)
	}
	return out, nil
}
