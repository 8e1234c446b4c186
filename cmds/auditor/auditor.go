package auditor

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-helios/cmds/cmdutil"
	"github.com/thechriswalker/go-helios/helios"
)

// Register the auditor commands
func Register(rootCmd *cobra.Command) {
	var auditorCmd = &cobra.Command{
		Use:   "auditor",
		Short: "Tally ballots and check the result",
	}
	rootCmd.AddCommand(auditorCmd)

	var electionFile, voteFiles, tallyOut string
	var workers int
	var verify bool
	tallyCmd := &cobra.Command{
		Use:   "tally",
		Short: "Verify every ballot and fold them into the encrypted tally",
		Run: func(cmd *cobra.Command, args []string) {
			election := readElection(electionFile)
			lists, err := cmdutil.ReadList(voteFiles, func() *[]*helios.EncryptedVote { return &[]*helios.EncryptedVote{} })
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read ballots")
			}
			votes := []*helios.EncryptedVote{}
			for _, l := range lists {
				votes = append(votes, *l...)
			}

			tally := helios.NewTally(election)
			bar := cmdutil.MaybeProgress(len(votes))
			bar.Start()
			err = tally.AddVoteBatch(context.Background(), votes, verify,
				helios.WithWorkers(workers), helios.WithProgress(bar.Add))
			bar.Finish()
			if err != nil {
				log.Fatal().Err(err).Msg("Ballots rejected, nothing was tallied")
			}
			if err := cmdutil.WriteFile(tallyOut, tally); err != nil {
				log.Fatal().Err(err).Msg("Failed to write tally")
			}
			log.Info().Uint64("tallied", tally.NumTallied).Msg("Tally complete")
		},
	}
	tallyCmd.Flags().StringVar(&electionFile, "election", "election.json", "The election")
	tallyCmd.Flags().StringVar(&voteFiles, "votes", "votes.json", "Comma separated ballot files, each a list of ballots")
	tallyCmd.Flags().StringVar(&tallyOut, "out", "tally.json", "Output file (.json or .cbor)")
	tallyCmd.Flags().IntVar(&workers, "workers", 0, "Parallel workers, 0 for one per CPU")
	tallyCmd.Flags().BoolVar(&verify, "verify", true, "Verify ballot proofs before tallying")
	auditorCmd.AddCommand(tallyCmd)

	var tallyFile, trusteeFiles, resultOut string
	var maxBallots uint64
	resultCmd := &cobra.Command{
		Use:   "result",
		Short: "Check every trustee's decryption and publish the result",
		Run: func(cmd *cobra.Command, args []string) {
			election := readElection(electionFile)
			tally := &helios.Tally{}
			if err := cmdutil.ReadFile(tallyFile, tally); err != nil {
				log.Fatal().Err(err).Msg("Failed to read tally")
			}
			if err := tally.Bind(election, maxBallots); err != nil {
				log.Fatal().Err(err).Msg("Tally does not belong to the election")
			}
			trustees, err := cmdutil.ReadList(trusteeFiles, func() *helios.Trustee { return &helios.Trustee{} })
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read trustees")
			}
			pk, err := helios.CombineTrusteeKeys(election.Scheme(), trustees...)
			if err != nil {
				log.Fatal().Err(err).Msg("Trustee keys did not verify")
			}
			if !pk.Equal(election.PublicKey) {
				log.Fatal().Msg("Trustee keys do not combine to the election key")
			}
			counts, err := helios.DecryptWithTrustees(tally, trustees...)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to decrypt tally")
			}
			result, err := election.PrettyResult(counts, tally.NumTallied)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to build result")
			}
			if err := cmdutil.WriteFile(resultOut, result); err != nil {
				log.Fatal().Err(err).Msg("Failed to write result")
			}
			for _, q := range result {
				for _, a := range q.Answers {
					log.Info().Str("question", q.Question).Str("answer", a.Answer).Uint64("count", a.Count).Bool("winner", a.Winner).Msg("Result")
				}
			}
		},
	}
	resultCmd.Flags().Uint64Var(&maxBallots, "max-ballots", helios.DefaultMaxBallots, "Reject a tally claiming more ballots than this")
	resultCmd.Flags().StringVar(&electionFile, "election", "election.json", "The election")
	resultCmd.Flags().StringVar(&tallyFile, "tally", "tally.json", "The encrypted tally")
	resultCmd.Flags().StringVar(&trusteeFiles, "trustees", "", "Comma separated trustee files, with decryption factors")
	resultCmd.Flags().StringVar(&resultOut, "out", cmdutil.Stdio, "Output file (.json or .cbor)")
	auditorCmd.AddCommand(resultCmd)
}

func readElection(file string) *helios.Election {
	election := &helios.Election{}
	if err := cmdutil.ReadFile(file, election); err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read election")
	}
	if err := election.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid election")
	}
	return election
}
