package wasm

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
)

// magic is the 16-byte artifact header (§6): the teacher's wasmer-flavored
// magic string swapped for this project's own name, keeping the same byte
// count spec.md specifies.
var magic = [16]byte{0, 'c', 'o', 'r', 'e', 'v', 'm', '-', 'a', 'r', 't', 'i', 'f', 'a', 'c', 't'}

const artifactFormatVersion uint32 = 1

type SerializeErrorCode int

const (
	BadMagic SerializeErrorCode = iota
	IncompatibleVersion
	Corrupt
	SerializeIo
)

type SerializeError struct {
	Code SerializeErrorCode
	Err  error
}

func (e *SerializeError) Error() string {
	switch e.Code {
	case BadMagic:
		return "serialized artifact: bad magic"
	case IncompatibleVersion:
		return "serialized artifact: incompatible version"
	case Corrupt:
		return fmt.Sprintf("serialized artifact: corrupt: %v", e.Err)
	default:
		return fmt.Sprintf("serialized artifact: io error: %v", e.Err)
	}
}

func (e *SerializeError) Unwrap() error { return e.Err }

// serializedPayload is the gob-encodable pair carried between the version
// header and the trailing offset.
type serializedPayload struct {
	Info     *ModuleInfo
	Artifact *Artifact
}

// Serialize encodes (info, artifact) per §6's format: 16-byte magic, u32
// version, length-prefixed deterministic-id string, the payload, and a
// trailing u64 giving the payload's starting offset (so a reader can seek
// straight to it without re-parsing the header, mirroring the archive-root
// offset convention of the spec's wasmer-derived format).
func Serialize(info *ModuleInfo, artifact *Artifact, deterministicID string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	if err := binary.Write(&buf, binary.LittleEndian, artifactFormatVersion); err != nil {
		return nil, &SerializeError{Code: SerializeIo, Err: err}
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(deterministicID))); err != nil {
		return nil, &SerializeError{Code: SerializeIo, Err: err}
	}
	buf.WriteString(deterministicID)

	payloadStart := uint64(buf.Len())

	if err := gob.NewEncoder(&buf).Encode(serializedPayload{Info: info, Artifact: artifact}); err != nil {
		return nil, &SerializeError{Code: SerializeIo, Err: err}
	}
	if err := binary.Write(&buf, binary.LittleEndian, payloadStart); err != nil {
		return nil, &SerializeError{Code: SerializeIo, Err: err}
	}
	return buf.Bytes(), nil
}

// Deserialize validates the magic and version header, checks the
// deterministic id against expectedID (the engine calling deserialize),
// checks that the trailing offset points at the payload, and decodes the
// remainder. Beyond these header checks the payload is trusted: its
// contents are not validated once it decodes.
func Deserialize(b []byte, expectedID string) (*ModuleInfo, *Artifact, error) {
	if len(b) < len(magic)+4+4+8 {
		return nil, nil, &SerializeError{Code: Corrupt, Err: fmt.Errorf("truncated header")}
	}
	if !bytes.Equal(b[:len(magic)], magic[:]) {
		return nil, nil, &SerializeError{Code: BadMagic}
	}
	off := len(magic)
	ver := binary.LittleEndian.Uint32(b[off:])
	off += 4
	if ver != artifactFormatVersion {
		return nil, nil, &SerializeError{Code: IncompatibleVersion}
	}

	idLen := binary.LittleEndian.Uint32(b[off:])
	off += 4
	if uint64(off)+uint64(idLen) > uint64(len(b)) {
		return nil, nil, &SerializeError{Code: Corrupt, Err: fmt.Errorf("truncated id")}
	}
	id := string(b[off : off+int(idLen)])
	off += int(idLen)
	if id != expectedID {
		return nil, nil, &SerializeError{Code: IncompatibleVersion, Err: fmt.Errorf("id mismatch: artifact=%q engine=%q", id, expectedID)}
	}

	trailer := b[len(b)-8:]
	payloadStart := binary.LittleEndian.Uint64(trailer)
	if payloadStart != uint64(off) {
		return nil, nil, &SerializeError{Code: Corrupt, Err: fmt.Errorf("archive-root offset mismatch")}
	}
	payload := b[off : len(b)-8]

	var sp serializedPayload
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&sp); err != nil {
		return nil, nil, &SerializeError{Code: Corrupt, Err: err}
	}
	return sp.Info, sp.Artifact, nil
}
