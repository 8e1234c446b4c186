package main

import (
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-helios/cmds/auditor"
	"github.com/thechriswalker/go-helios/cmds/authority"
	"github.com/thechriswalker/go-helios/cmds/simulate"
	"github.com/thechriswalker/go-helios/cmds/trustee"
	"github.com/thechriswalker/go-helios/cmds/voter"
	"github.com/thechriswalker/go-helios/helios"
)

func preamble(cmd *cobra.Command, args []string) {
	// preamble dump some info
	log.Info().
		Str("version", helios.Version).
		Msg("Helios Voting")

	commit := helios.Commit
	if len(commit) > 8 {
		commit = commit[0:8]
	}
	log.Debug().
		Str("commit", commit).
		Str("built", helios.BuildDate).
		Str("arch", runtime.GOARCH).
		Str("os", runtime.GOOS).
		Msg("Build Info")
}

const timeFormatMs = "2006-01-02T15:04:05.000Z07:00"
const timeFormatLocal = "2006-01-02 15:04:05.000"

func main() {
	// configure the logger.
	// remember pretty logs are only good on the console
	zerolog.TimeFieldFormat = timeFormatMs
	log.Logger = log.Output(zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
		cw.Out = os.Stderr
		cw.TimeFormat = timeFormatLocal
		cw.NoColor = true
	}))

	var rootCmd = &cobra.Command{
		Use:              "helios",
		Short:            "Helios homomorphic voting",
		Version:          helios.Version,
		PersistentPreRun: preamble,
	}

	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// commands:
	//
	// - authority: group parameters, freeze the election over the trustee keys
	// - trustee: generate a key with its proof, partially decrypt the tally
	// - voter: encrypt, audit and simulate ballots
	// - auditor: verify and tally ballots, check the decryption, publish the result
	// - simulate: all of the above in memory from one config file

	auditor.Register(rootCmd)
	authority.Register(rootCmd)
	trustee.Register(rootCmd)
	voter.Register(rootCmd)
	simulate.Register(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("An Error Occured")
		os.Exit(1)
	}
}
