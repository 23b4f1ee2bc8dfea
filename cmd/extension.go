package cmd

import (
	"errors"
	"os"
	"os/exec"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Environment of the extensions.
const (
	EnvBook      = "BK_BOOK"
	EnvNamespace = "BK_NAMESPACE"
	EnvCurrency  = "BK_CURRENCY"
	EnvVerbose   = "BK_VERBOSE"
)

// IsCommand reports whether name is a builtin subcommand.
func IsCommand(name string) bool {
	return slices.Contains(commandNames(), name) || slices.Contains([]string{"help", "flags", "commands"}, name)
}

// RunExtension attempts to find and execute an external bk-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
//
// The extension inherits the environment, with the configuration in use.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "bk-" + subcommand
	path, err := exec.LookPath(name)
	if err != nil {
		log.Debug().Msgf("External command %q not found in PATH: %v", name, err)
		return false, 0
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		EnvBook+"="+cfg.Book,
		EnvNamespace+"="+cfg.Namespace,
		EnvCurrency+"="+cfg.Currency,
		EnvVerbose+"="+strconv.FormatBool(*verbose),
	)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		log.Error().Msgf("Failed to execute %s, %v.", name, err)
		return true, 1
	}
	return true, 0
}
