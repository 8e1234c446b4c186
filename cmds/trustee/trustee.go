package trustee

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-helios/cmds/cmdutil"
	"github.com/thechriswalker/go-helios/crypto/elgamal"
	"github.com/thechriswalker/go-helios/crypto/random"
	"github.com/thechriswalker/go-helios/helios"
)

// Register the trustee commands
func Register(rootCmd *cobra.Command) {
	var trusteeCmd = &cobra.Command{
		Use:   "trustee",
		Short: "Trustee Commands",
	}
	rootCmd.AddCommand(trusteeCmd)

	var paramsFile, name, hash, trusteeOut, secretOut string
	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a trustee key and its proof of knowledge",
		Run: func(cmd *cobra.Command, args []string) {
			sys := elgamal.Helios2048()
			if paramsFile != "" {
				sys = &elgamal.System{}
				if err := cmdutil.ReadFile(paramsFile, sys); err != nil {
					log.Fatal().Err(err).Msg("Failed to read group parameters")
				}
			}
			scheme, err := elgamal.ParseHashScheme(hash)
			if err != nil {
				log.Fatal().Err(err).Msg("Bad challenge hash")
			}
			trustee, kp, err := helios.NewTrustee(random.Reader(), name, sys, scheme)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to generate trustee")
			}
			if err := cmdutil.WriteFile(secretOut, kp); err != nil {
				log.Fatal().Err(err).Msg("Failed to write secret key")
			}
			if err := cmdutil.WriteFile(trusteeOut, trustee); err != nil {
				log.Fatal().Err(err).Msg("Failed to write trustee")
			}
			log.Info().Str("uuid", trustee.UUID).Str("public_key_hash", trustee.PublicKeyHash).Msg("Trustee key generated")
		},
	}
	keygenCmd.Flags().StringVar(&paramsFile, "params", "", "Group parameters, defaults to the Helios standard group")
	keygenCmd.Flags().StringVar(&name, "name", "", "Trustee name")
	keygenCmd.Flags().StringVar(&hash, "hash", "", "Challenge hash of the election (sha1, sha256, blake3)")
	keygenCmd.Flags().StringVar(&trusteeOut, "out", "trustee.json", "Public trustee record")
	keygenCmd.Flags().StringVar(&secretOut, "secret", "secret.json", "Secret key, keep this safe")
	trusteeCmd.AddCommand(keygenCmd)

	var electionFile, tallyFile, trusteeFile, secretFile string
	var workers int
	var maxBallots uint64
	decryptCmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Add this trustee's decryption factors and proofs for the tally",
		Run: func(cmd *cobra.Command, args []string) {
			election := &helios.Election{}
			if err := cmdutil.ReadFile(electionFile, election); err != nil {
				log.Fatal().Err(err).Msg("Failed to read election")
			}
			tally := &helios.Tally{}
			if err := cmdutil.ReadFile(tallyFile, tally); err != nil {
				log.Fatal().Err(err).Msg("Failed to read tally")
			}
			if err := tally.Bind(election, maxBallots); err != nil {
				log.Fatal().Err(err).Msg("Tally does not belong to the election")
			}
			trustee := &helios.Trustee{}
			if err := cmdutil.ReadFile(trusteeFile, trustee); err != nil {
				log.Fatal().Err(err).Msg("Failed to read trustee")
			}
			kp := &elgamal.KeyPair{}
			if err := cmdutil.ReadFile(secretFile, kp); err != nil {
				log.Fatal().Err(err).Msg("Failed to read secret key")
			}

			bar := cmdutil.MaybeProgress(cells(tally))
			bar.Start()
			err := trustee.Decrypt(context.Background(), random.Reader(), kp.Secret(), tally,
				helios.WithWorkers(workers), helios.WithProgress(bar.Add))
			bar.Finish()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to decrypt")
			}
			if err := cmdutil.WriteFile(trusteeFile, trustee); err != nil {
				log.Fatal().Err(err).Msg("Failed to write trustee")
			}
			log.Info().Str("uuid", trustee.UUID).Uint64("tallied", tally.NumTallied).Msg("Decryption factors added")
		},
	}
	decryptCmd.Flags().Uint64Var(&maxBallots, "max-ballots", helios.DefaultMaxBallots, "Reject a tally claiming more ballots than this")
	decryptCmd.Flags().StringVar(&electionFile, "election", "election.json", "The election")
	decryptCmd.Flags().StringVar(&tallyFile, "tally", "tally.json", "The encrypted tally")
	decryptCmd.Flags().StringVar(&trusteeFile, "trustee", "trustee.json", "Trustee record, updated in place")
	decryptCmd.Flags().StringVar(&secretFile, "secret", "secret.json", "The trustee secret key")
	decryptCmd.Flags().IntVar(&workers, "workers", 0, "Parallel workers, 0 for one per CPU")
	trusteeCmd.AddCommand(decryptCmd)
}

func cells(t *helios.Tally) int {
	n := 0
	for _, q := range t.Tally {
		n += len(q)
	}
	return n
}
