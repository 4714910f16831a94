package fetch

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/xxh3"
)

// ComputeChecksum вычисляет xxh3 (64-bit) хеш данных, hex-encoded big-endian
func ComputeChecksum(data []byte) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxh3.Hash(data))
	return hex.EncodeToString(b[:])
}

// VerifyFileChecksum сверяет xxh3 хеш файла с ожидаемым значением
func VerifyFileChecksum(path, expected string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s for checksum: %w", path, err)
	}

	actual := ComputeChecksum(data)
	if actual != expected {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s (corrupted download)",
			path, expected, actual)
	}
	return nil
}
