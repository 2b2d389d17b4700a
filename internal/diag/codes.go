package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Artifact decoding (1xxx)
	ArtInfo           Code = 1000
	ArtSchemaMismatch Code = 1001
	ArtTruncated      Code = 1002
	ArtBadReference   Code = 1003

	// Body structure validation (3xxx)
	HirInfo               Code = 3000
	HirMissingExprType    Code = 3001
	HirMissingBindingType Code = 3002
	HirUnboundLocal       Code = 3003
	HirMissingBlock       Code = 3004
	HirAwaitOutsideAsync  Code = 3005
)

func (c Code) String() string {
	return fmt.Sprintf("D%04d", uint16(c))
}
