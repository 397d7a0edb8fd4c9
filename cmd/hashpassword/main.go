// Package main prints a bcrypt hash of the admin password read from stdin.
// The output can be used as ADMIN_PASSWORD so the plain secret never sits in the environment.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/hezo-be/webinar-backend/pkg/utils"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := run(os.Stdin, os.Stdout); err != nil {
		logger.Fatal("hash password", zap.Error(err))
	}
}

func run(in io.Reader, out io.Writer) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("empty password")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
