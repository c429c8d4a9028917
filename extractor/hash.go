package extractor

import "crypto/sha256"

// hashStatement gives a stable, fixed-size key for deduplicating identical
// decision statements without storing the full text in Redis.
func hashStatement(statement string) []byte {
	sum := sha256.Sum256([]byte(statement))
	return sum[:]
}
