package entity

import (
	"fmt"
	"strings"
)

type Owner string

const (
	OwnerPlayer  Owner = "player"
	OwnerEnemy   Owner = "enemy"
	OwnerNeutral Owner = "neutral"
)

// ParseOwner accepts "ai" as an alias of enemy.
func ParseOwner(s string) (Owner, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player":
		return OwnerPlayer, nil
	case "enemy", "ai":
		return OwnerEnemy, nil
	case "neutral", "":
		return OwnerNeutral, nil
	default:
		return "", fmt.Errorf("unknown owner %q", s)
	}
}

func (o Owner) Valid() bool {
	return o == OwnerPlayer || o == OwnerEnemy || o == OwnerNeutral
}
