package auth

import "strings"

// commonPasswords is a short list of the most frequently leaked passwords.
var commonPasswords = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
123456 123456789 12345678 12345 1234567 1234567890 123123 111111 000000 654321
password password1 password123 passw0rd p@ssw0rd qwerty qwerty123 qwertyuiop
abc123 iloveyou admin admin123 welcome welcome1 letmein monkey dragon football
baseball sunshine princess master shadow superman michael trustno1 starwars
login hello freedom whatever zaq12wsx 1q2w3e4r 1qaz2wsx asdfghjkl asdf1234
changeme secret charlie jordan hunter2 computer pokemon batman killer
`) {
		commonPasswords[p] = struct{}{}
	}
}

func isCommonPassword(password string) bool {
	_, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]

	return ok
}
