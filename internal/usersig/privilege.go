package usersig

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// Privilege bits granted by a private map key.
type Privilege uint32

const (
	PrivilegeCreateRoom Privilege = 1 << iota
	PrivilegeEnterRoom
	PrivilegeSendAudio
	PrivilegeRecvAudio
	PrivilegeSendVideo
	PrivilegeRecvVideo
	PrivilegeSendSubVideo
	PrivilegeRecvSubVideo

	PrivilegeAll Privilege = 0xFF
)

var ErrPrivilegeMap = errors.New("usersig: malformed privilege map")

// PrivilegeMap restricts a signature to one room. Rooms are addressed either
// by a numeric RoomID or by RoomStr; a non-empty RoomStr wins.
type PrivilegeMap struct {
	Identifier  string
	SDKAppID    int64
	RoomID      uint32
	RoomStr     string
	ExpiresAt   time.Time
	Privileges  Privilege
	AccountType uint32
}

// Has reports whether every bit of p is granted.
func (m PrivilegeMap) Has(p Privilege) bool {
	return m.Privileges&p == p
}

// Encode serializes the map in the big-endian layout the media backend reads:
// version, account, sdkappid, room id, expiry, privileges, account type and,
// for version 1, the string room id.
func (m PrivilegeMap) Encode() ([]byte, error) {
	if len(m.Identifier) > math.MaxUint16 || len(m.RoomStr) > math.MaxUint16 {
		return nil, ErrPrivilegeMap
	}
	size := 1 + 2 + len(m.Identifier) + 20
	if m.RoomStr != "" {
		size += 2 + len(m.RoomStr)
	}
	buf := make([]byte, 0, size)
	if m.RoomStr != "" {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(m.Identifier)))
	buf = append(buf, m.Identifier...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(m.SDKAppID))
	roomID := m.RoomID
	if m.RoomStr != "" {
		roomID = 0
	}
	buf = binary.BigEndian.AppendUint32(buf, roomID)
	buf = binary.BigEndian.AppendUint32(buf, uint32(m.ExpiresAt.Unix()))
	buf = binary.BigEndian.AppendUint32(buf, uint32(m.Privileges))
	buf = binary.BigEndian.AppendUint32(buf, m.AccountType)
	if m.RoomStr != "" {
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(m.RoomStr)))
		buf = append(buf, m.RoomStr...)
	}
	return buf, nil
}

// DecodePrivilegeMap reverses Encode.
func DecodePrivilegeMap(buf []byte) (*PrivilegeMap, error) {
	r := reader{buf: buf}
	ver := r.u8()
	if ver > 1 {
		return nil, ErrPrivilegeMap
	}
	m := &PrivilegeMap{}
	m.Identifier = r.str16()
	m.SDKAppID = int64(r.u32())
	m.RoomID = r.u32()
	m.ExpiresAt = time.Unix(int64(r.u32()), 0)
	m.Privileges = Privilege(r.u32())
	m.AccountType = r.u32()
	if ver == 1 {
		m.RoomStr = r.str16()
	}
	if r.err || r.off != len(buf) {
		return nil, ErrPrivilegeMap
	}
	return m, nil
}

type reader struct {
	buf []byte
	off int
	err bool
}

func (r *reader) take(n int) []byte {
	if r.err || r.off+n > len(r.buf) {
		r.err = true
		return make([]byte, n)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() byte { return r.take(1)[0] }

func (r *reader) u32() uint32 { return binary.BigEndian.Uint32(r.take(4)) }

func (r *reader) str16() string {
	n := int(binary.BigEndian.Uint16(r.take(2)))
	return string(r.take(n))
}

// GeneratePrivateMapKey signs identifier with a privilege map restricting it to
// the room and privileges of m. Identifier, application and expiry in m are
// filled in from the generator.
func (g *Generator) GeneratePrivateMapKey(identifier string, now time.Time, m PrivilegeMap) (string, error) {
	if identifier == "" {
		return "", ErrIdentifier
	}
	m.Identifier = identifier
	m.SDKAppID = g.SDKAppID
	m.ExpiresAt = time.Unix(now.Unix()+g.Expire, 0)
	buf, err := m.Encode()
	if err != nil {
		return "", err
	}
	return g.generate(identifier, now, buf)
}
