package authority

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-helios/cmds/cmdutil"
	"github.com/thechriswalker/go-helios/config"
	"github.com/thechriswalker/go-helios/crypto/elgamal"
	"github.com/thechriswalker/go-helios/crypto/random"
	"github.com/thechriswalker/go-helios/helios"
)

// Register the election setup commands
func Register(rootCmd *cobra.Command) {
	var authorityCmd = &cobra.Command{
		Use:   "authority",
		Short: "Election Setup Authority",
		Long:  "Creates the group parameters and the frozen election definition",
	}
	rootCmd.AddCommand(authorityCmd)

	var bits int
	var paramsOut string
	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "Write the group parameters for trustee key generation",
		Run: func(cmd *cobra.Command, args []string) {
			sys := elgamal.Helios2048()
			if bits != 0 {
				if bits < elgamal.MinPBits {
					log.Fatal().Int("bits", bits).Int("min", elgamal.MinPBits).Msg("Keys in a group this small are rejected on load, use the simulate command instead")
				}
				log.Info().Int("bits", bits).Msg("Generating safe prime group, this will take a while")
				var err error
				if sys, err = elgamal.Generate(random.Reader(), bits); err != nil {
					log.Fatal().Err(err).Msg("Failed to generate group")
				}
			}
			if err := cmdutil.WriteFile(paramsOut, sys); err != nil {
				log.Fatal().Err(err).Msg("Failed to write parameters")
			}
			log.Info().Int("p_bits", sys.P.BitLen()).Int("q_bits", sys.Q.BitLen()).Msg("Group parameters written")
		},
	}
	paramsCmd.Flags().IntVar(&bits, "bits", 0, "Size of a freshly generated safe prime group, 0 for the Helios standard group")
	paramsCmd.Flags().StringVar(&paramsOut, "out", cmdutil.Stdio, "Output file (.json or .cbor)")
	authorityCmd.AddCommand(paramsCmd)

	var configFile string
	var trusteeFiles string
	var electionOut string
	electionCmd := &cobra.Command{
		Use:   "election",
		Short: "Freeze the election definition with the combined trustee key",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(configFile)
			if err != nil {
				log.Fatal().Err(err).Str("file", configFile).Msg("Failed to load election config")
			}
			trustees, err := cmdutil.ReadList(trusteeFiles, func() *helios.Trustee { return &helios.Trustee{} })
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read trustees")
			}
			if len(trustees) == 0 {
				log.Fatal().Msg("At least one trustee is required")
			}
			scheme, err := elgamal.ParseHashScheme(cfg.Election.ChallengeHash)
			if err != nil {
				log.Fatal().Err(err).Msg("Bad challenge hash")
			}
			pk, err := helios.CombineTrusteeKeys(scheme, trustees...)
			if err != nil {
				log.Fatal().Err(err).Msg("Trustee keys did not verify")
			}
			election, err := cfg.Election.ToElection(random.Reader(), pk)
			if err != nil {
				log.Fatal().Err(err).Msg("Invalid election")
			}
			hash, err := election.Hash()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to hash election")
			}
			if err := cmdutil.WriteFile(electionOut, election); err != nil {
				log.Fatal().Err(err).Msg("Failed to write election")
			}
			log.Info().
				Str("uuid", election.UUID).
				Str("hash", hash).
				Int("trustees", len(trustees)).
				Msg("Election frozen")
		},
	}
	electionCmd.Flags().StringVar(&configFile, "config", "election.toml", "The election definition")
	electionCmd.Flags().StringVar(&trusteeFiles, "trustees", "", "Comma separated trustee files")
	electionCmd.Flags().StringVar(&electionOut, "out", "election.json", "Output file (.json or .cbor)")
	authorityCmd.AddCommand(electionCmd)
}
