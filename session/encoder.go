package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const formatVersionV1 = 1

// Encode serializes s into the versioned binary record format.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(formatVersionV1)

	if len(s.AccountID) > 255 {
		return nil, errors.New("accountID too long")
	}
	buf.WriteByte(byte(len(s.AccountID)))
	buf.WriteString(s.AccountID)

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a binary record produced by Encode. The session ID is not
// part of the record; callers supply it from the storage key.
func Decode(id string, data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != formatVersionV1 {
		return nil, errors.New("invalid session record version")
	}

	accountIDLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	accountID := make([]byte, accountIDLen)
	if _, err := io.ReadFull(reader, accountID); err != nil {
		return nil, err
	}

	s := &Session{
		ID:        id,
		AccountID: string(accountID),
	}

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	return s, nil
}
