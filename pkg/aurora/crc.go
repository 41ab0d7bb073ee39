package aurora

// CRC16 computes the checksum used on every Aurora frame: CCITT with
// polynomial 0x8408, initial value 0xFFFF, bits processed LSB-first,
// final value complemented. Note this is not the common 0x1021 form.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ 0x8408
			} else {
				crc >>= 1
			}
		}
	}
	return ^crc
}

// appendCRC16 appends the checksum of data to data, low byte first.
func appendCRC16(data []byte) []byte {
	crc := CRC16(data)
	return append(data, byte(crc&0xFF), byte(crc>>8))
}
