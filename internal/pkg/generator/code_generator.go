package generator

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

type CodeGenerator struct{}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

// GenerateRecordID produces the identifier assigned to a sale record at
// the moment it is appended to the ledger.
func (g *CodeGenerator) GenerateRecordID() string {
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		return ""
	}
	return fmt.Sprintf("SR-%s", hex.EncodeToString(randomBytes))
}
