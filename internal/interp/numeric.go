package interp

import (
	"strconv"

	"ramalg/internal/domain"
)

func parseSignedInt(s string) (domain.RamDomain, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return domain.RamDomain(v), nil
}

func formatSignedInt(v domain.RamDomain) string {
	return strconv.FormatInt(int64(v), 10)
}
