package sensor

const (
	crcPolynomial = 0x31
	crcInit       = 0xFF
)

// Checksum computes the Sensirion CRC-8 (poly 0x31, init 0xFF, no reflection).
func Checksum(data []byte) byte {
	crc := byte(crcInit)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Verify reports whether crc matches data.
func Verify(data []byte, crc byte) bool {
	return Checksum(data) == crc
}
