package spawn

import (
	"bufio"
	"os"
	"strings"
)

// shellFromPasswd looks up username's login shell in /etc/passwd, the
// second fallback in spec.md §6's SHELL resolution chain. Returns "" if
// the file is unreadable or the user has no entry.
func shellFromPasswd(username string) string {
	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}
