// Package drivetrain turns path velocities into motor commands for the supported wheel
// topologies and follows sequences of paths with per-channel closed loop correction.
package drivetrain

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind is a drivetrain topology.
type Kind int

// Supported topologies. Motors are always listed left side first.
const (
	// TwoWD takes motors [left, right].
	TwoWD Kind = iota
	// FourWD takes motors [left front, left back, right front, right back].
	FourWD
	// SixWD takes motors [left front, left middle, left back, right front, right middle, right back].
	SixWD
	// Diffy is a differential swerve with pod motors [left front, left back, right front, right back].
	Diffy
)

var kindNames = map[Kind]string{
	TwoWD:  "twowd",
	FourWD: "fourwd",
	SixWD:  "sixwd",
	Diffy:  "diffy",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind returns the kind named s, ignoring case.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return 0, errors.Errorf("unknown drivetrain kind %q", s)
}

// MotorCount is the number of motors the kind drives.
func (k Kind) MotorCount() int {
	switch k {
	case TwoWD:
		return 2
	case FourWD, Diffy:
		return 4
	case SixWD:
		return 6
	default:
		return 0
	}
}
