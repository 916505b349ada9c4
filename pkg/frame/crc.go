package frame

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/sigurn/crc16"
)

const crcSize = 2

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// Checksum returns the CRC-16/XMODEM of data, the checksum the radio firmware uses
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

func appendChecksum(body []byte) []byte {
	var crc [crcSize]byte
	binary.BigEndian.PutUint16(crc[:], Checksum(body))
	return append(body, crc[:]...)
}

// verify checks the big-endian checksum trailing buf and returns the bytes it covers
func verify(buf []byte) ([]byte, error) {
	if len(buf) < crcSize {
		return nil, errors.Wrapf(ErrShortFrame, "%d bytes", len(buf))
	}
	body := buf[:len(buf)-crcSize]
	want := binary.BigEndian.Uint16(buf[len(buf)-crcSize:])
	have := Checksum(body)
	if want != have {
		return nil, errors.Wrapf(ErrCRCMismatch, "want=%04x, have=%04x", want, have)
	}
	return body, nil
}
