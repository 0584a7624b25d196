package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// confirm prompts on stdin unless --yes was passed, returning false if the
// user declines.
func confirm(yes bool, prompt string) bool {
	if yes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
