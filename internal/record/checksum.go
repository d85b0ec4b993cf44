package record

import (
	"github.com/snksoft/crc"
)

// cksumParams is CRC-32/CKSUM: the POSIX cksum polynomial without the
// trailing length bytes cksum(1) appends.
var cksumParams = &crc.Parameters{
	Width:      32,
	Polynomial: 0x04C11DB7,
	Init:       0x00000000,
	ReflectIn:  false,
	ReflectOut: false,
	FinalXor:   0xFFFFFFFF,
}

var cksumTable = crc.NewTable(cksumParams)

// Checksum returns the CRC-32/CKSUM of p.
func Checksum(p []byte) uint32 {
	return uint32(cksumTable.CalculateCRC(p))
}
