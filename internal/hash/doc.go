// Package hash provides the checksum used by record frames.
//
// # CRC32-Castagnoli (CRC32C)
//
// CRC32C is hardware accelerated on x86 (SSE4.2) and ARM (CRC extension) and
// detects all single-bit and double-bit errors plus burst errors up to 32
// bits.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
