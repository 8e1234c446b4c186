package simulate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-helios/cmds/cmdutil"
	"github.com/thechriswalker/go-helios/config"
	"github.com/thechriswalker/go-helios/crypto/elgamal"
	"github.com/thechriswalker/go-helios/helios"
)

// Register the simulate command
func Register(rootCmd *cobra.Command) {
	var configFile, resultOut string
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a whole election in memory: keygen, ballots, tally and decryption",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(configFile)
			if err != nil {
				log.Fatal().Err(err).Str("file", configFile).Msg("Failed to load config")
			}
			if err := cfg.Logging.Apply(); err != nil {
				log.Fatal().Err(err).Msg("Bad logging config")
			}
			result, err := Run(context.Background(), cfg)
			if err != nil {
				log.Fatal().Err(err).Msg("Simulation failed")
			}
			if err := cmdutil.WriteFile(resultOut, result); err != nil {
				log.Fatal().Err(err).Msg("Failed to write result")
			}
		},
	}
	simulateCmd.Flags().StringVar(&configFile, "config", "election.toml", "Election and simulation config")
	simulateCmd.Flags().StringVar(&resultOut, "out", cmdutil.Stdio, "Output file (.json or .cbor)")
	rootCmd.AddCommand(simulateCmd)
}

// Run plays out every role of an election against a freshly generated set of
// trustees and random ballots, checking every proof on the way.
func Run(ctx context.Context, cfg *config.Config) ([]*helios.QuestionResult, error) {
	sim := cfg.Simulation
	if sim.Seed != "" {
		log.Warn().Msg("Using a deterministic seed, nothing in this run is secret")
	}
	src := sim.Source()
	opts := []helios.Option{helios.WithWorkers(cfg.Workers)}

	start := time.Now()
	sys, err := sim.System(src)
	if err != nil {
		return nil, err
	}
	log.Info().Int("p_bits", sys.P.BitLen()).Dur("took", time.Since(start)).Msg("Group ready")

	scheme, err := elgamal.ParseHashScheme(cfg.Election.ChallengeHash)
	if err != nil {
		return nil, err
	}
	trustees := make([]*helios.Trustee, sim.Trustees)
	secrets := make([]*elgamal.SecretKey, sim.Trustees)
	for i := range trustees {
		t, kp, err := helios.NewTrustee(src, fmt.Sprintf("trustee-%d", i+1), sys, scheme)
		if err != nil {
			return nil, err
		}
		trustees[i], secrets[i] = t, kp.Secret()
	}
	pk, err := helios.CombineTrusteeKeys(scheme, trustees...)
	if err != nil {
		return nil, err
	}
	election, err := cfg.Election.ToElection(src, pk)
	if err != nil {
		return nil, err
	}
	hash, err := election.Hash()
	if err != nil {
		return nil, err
	}
	log.Info().Str("uuid", election.UUID).Str("hash", hash).Int("trustees", len(trustees)).Msg("Election frozen")

	votes, err := castVotes(src, election, sim)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	tally := helios.NewTally(election)
	if err := tally.AddVoteBatch(ctx, votes, true, opts...); err != nil {
		return nil, err
	}
	log.Info().Uint64("tallied", tally.NumTallied).Dur("took", time.Since(start)).Msg("Ballots verified and tallied")

	start = time.Now()
	for i, t := range trustees {
		if err := t.Decrypt(ctx, src, secrets[i], tally, opts...); err != nil {
			return nil, err
		}
	}
	counts, err := helios.DecryptWithTrustees(tally, trustees...)
	if err != nil {
		return nil, err
	}
	log.Info().Dur("took", time.Since(start)).Msg("Tally decrypted")

	return election.PrettyResult(counts, tally.NumTallied)
}

func castVotes(src io.Reader, election *helios.Election, sim *config.Simulation) ([]*helios.EncryptedVote, error) {
	start := time.Now()
	votes := make([]*helios.EncryptedVote, sim.Voters)
	bar := cmdutil.MaybeProgress(sim.Voters)
	bar.Start()
	defer bar.Finish()
	for i := range votes {
		vote, err := helios.NewEncryptedVote(src, election, cmdutil.RandomSelections(src, election, sim.Abstain))
		if err != nil {
			return nil, fmt.Errorf("vote %d: %w", i, err)
		}
		votes[i] = vote.ForCasting()
		bar.Increment()
	}
	log.Info().Int("voters", sim.Voters).Dur("took", time.Since(start)).Msg("Ballots cast")
	return votes, nil
}
