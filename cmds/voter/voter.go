package voter

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thechriswalker/go-helios/cmds/cmdutil"
	"github.com/thechriswalker/go-helios/crypto/random"
	"github.com/thechriswalker/go-helios/helios"
)

func loadElection(file string) *helios.Election {
	election := &helios.Election{}
	if err := cmdutil.ReadFile(file, election); err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to read election")
	}
	if err := election.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid election")
	}
	return election
}

// Register the voter commands
func Register(rootCmd *cobra.Command) {
	var voterCmd = &cobra.Command{
		Use:   "voter",
		Short: "Voter commands: create, audit and simulate ballots",
	}
	rootCmd.AddCommand(voterCmd)

	var electionFile, selections, voteOut string
	var audit bool
	encryptCmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a ballot",
		Long: `Encrypt a ballot for the election.

Selections are answer indexes per question, questions separated by ';' and
answers by ','. So "0;1,2;" picks answer 0 for the first question, answers
1 and 2 for the second and leaves the third blank.

With --audit the ballot keeps its randomness so it can be checked, and must
then never be cast.`,
		Run: func(cmd *cobra.Command, args []string) {
			election := loadElection(electionFile)
			sel, err := cmdutil.ParseSelections(selections)
			if err != nil {
				log.Fatal().Err(err).Msg("Bad selections")
			}
			vote, err := helios.NewEncryptedVote(random.Reader(), election, sel)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to encrypt ballot")
			}
			hash, err := vote.Hash()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to hash ballot")
			}
			if !audit {
				vote = vote.ForCasting()
			}
			if err := cmdutil.WriteFile(voteOut, vote); err != nil {
				log.Fatal().Err(err).Msg("Failed to write ballot")
			}
			log.Info().Str("vote_hash", hash).Bool("audit", audit).Msg("Ballot encrypted")
		},
	}
	encryptCmd.Flags().StringVar(&electionFile, "election", "election.json", "The election")
	encryptCmd.Flags().StringVar(&selections, "select", "", "Selections, e.g. \"0;1,2;\"")
	encryptCmd.Flags().StringVar(&voteOut, "out", cmdutil.Stdio, "Output file (.json or .cbor)")
	encryptCmd.Flags().BoolVar(&audit, "audit", false, "Keep the plaintexts and randomness for auditing")
	voterCmd.AddCommand(encryptCmd)

	var voteFile string
	var verifyAudit bool
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the proofs of a ballot, or the contents of an audited one",
		Run: func(cmd *cobra.Command, args []string) {
			election := loadElection(electionFile)
			vote := &helios.EncryptedVote{}
			if err := cmdutil.ReadFile(voteFile, vote); err != nil {
				log.Fatal().Err(err).Msg("Failed to read ballot")
			}
			ok := vote.Verify(election)
			if ok && verifyAudit {
				ok = vote.VerifyAudit(election)
			}
			if !ok {
				log.Fatal().Msg("Ballot did not verify, run with DEBUG=1 for the reason")
			}
			hash, err := vote.Hash()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to hash ballot")
			}
			log.Info().Str("vote_hash", hash).Msg("Ballot verified")
		},
	}
	verifyCmd.Flags().StringVar(&electionFile, "election", "election.json", "The election")
	verifyCmd.Flags().StringVar(&voteFile, "vote", cmdutil.Stdio, "The ballot")
	verifyCmd.Flags().BoolVar(&verifyAudit, "audit", false, "Also check the revealed plaintexts and randomness")
	voterCmd.AddCommand(verifyCmd)

	var count int
	var abstain float64
	var seed, votesOut string
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Cast a number of random ballots into a single file",
		Run: func(cmd *cobra.Command, args []string) {
			election := loadElection(electionFile)
			if abstain < 0 || abstain >= 1 {
				log.Fatal().Float64("abstain", abstain).Msg("Abstain must be in [0, 1)")
			}
			src := random.Reader()
			if seed != "" {
				log.Warn().Msg("Using a deterministic seed, these ballots are not secret")
				src = random.Deterministic([]byte(seed))
			}
			votes := make([]*helios.EncryptedVote, count)
			bar := cmdutil.MaybeProgress(count)
			bar.Start()
			for i := range votes {
				vote, err := helios.NewEncryptedVote(src, election, cmdutil.RandomSelections(src, election, abstain))
				if err != nil {
					log.Fatal().Err(err).Int("vote", i).Msg("Failed to encrypt ballot")
				}
				votes[i] = vote.ForCasting()
				bar.Increment()
			}
			bar.Finish()
			if err := cmdutil.WriteFile(votesOut, votes); err != nil {
				log.Fatal().Err(err).Msg("Failed to write ballots")
			}
			log.Info().Int("count", count).Msg("Ballots simulated")
		},
	}
	simulateCmd.Flags().StringVar(&electionFile, "election", "election.json", "The election")
	simulateCmd.Flags().IntVar(&count, "count", 100, "Number of ballots")
	simulateCmd.Flags().Float64Var(&abstain, "abstain", 0, "Probability of leaving an optional question blank")
	simulateCmd.Flags().StringVar(&seed, "seed", "", "Reproducible randomness, for testing only")
	simulateCmd.Flags().StringVar(&votesOut, "out", "votes.json", "Output file (.json or .cbor)")
	voterCmd.AddCommand(simulateCmd)
}
