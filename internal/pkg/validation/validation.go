package validation

import (
	"regexp"
	"strings"
)

// Student names: letters, spaces, dots, hyphens, apostrophes only.
var studentNameRe = regexp.MustCompile(`^[\p{L}\s.\-']+$`)

// Room numbers are short alphanumeric labels such as "101" or "G2".
var roomNumberRe = regexp.MustCompile(`^[A-Za-z0-9\-]{1,16}$`)

const maxStudentNameLen = 80

func IsValidStudentName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && len(name) <= maxStudentNameLen && studentNameRe.MatchString(name)
}

func IsValidRoomNumber(roomNumber string) bool {
	return roomNumberRe.MatchString(roomNumber)
}
