// Package config defines the TOML configuration of an election and of the
// simulator.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/thechriswalker/go-helios/crypto/elgamal"
	"github.com/thechriswalker/go-helios/crypto/random"
	"github.com/thechriswalker/go-helios/helios"
)

const (
	defaultLogLevel   = "info"
	defaultMax        = 1
	defaultVoters     = 10
	defaultTrustees   = 1
	defaultResultType = helios.ResultAbsolute
)

// Logging is the logging configuration.
type Logging struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `toml:"level"`
}

// Apply sets the global log level.
func (l *Logging) Apply() error {
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// Question is one question of the election.
type Question struct {
	Question  string   `toml:"question"`
	ShortName string   `toml:"short_name"`
	Answers   []string `toml:"answers"`
	Min       int      `toml:"min"`
	// Max defaults to 1, unless Approval is set, which leaves it unbounded.
	Max        *int   `toml:"max"`
	Approval   bool   `toml:"approval"`
	ResultType string `toml:"result_type"`
}

func (q *Question) applyDefaults() error {
	if q.Approval {
		if q.Max != nil {
			return errors.New("config: an approval question cannot have a max")
		}
	} else if q.Max == nil {
		max := defaultMax
		q.Max = &max
	}
	if q.ResultType == "" {
		q.ResultType = defaultResultType
	}
	return nil
}

// Election is the election definition, everything but the public key.
type Election struct {
	// UUID is generated when empty.
	UUID          string      `toml:"uuid"`
	Name          string      `toml:"name"`
	ShortName     string      `toml:"short_name"`
	Description   string      `toml:"description"`
	ChallengeHash string      `toml:"challenge_hash"`
	Questions     []*Question `toml:"questions"`
}

// ToElection builds the election for a public key and validates it.
func (e *Election) ToElection(src io.Reader, pk *elgamal.PublicKey) (*helios.Election, error) {
	scheme, err := elgamal.ParseHashScheme(e.ChallengeHash)
	if err != nil {
		return nil, err
	}
	id := e.UUID
	if id == "" {
		u, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return nil, err
		}
		id = u.String()
	}
	out := &helios.Election{
		UUID:        id,
		Name:        e.Name,
		ShortName:   e.ShortName,
		Description: e.Description,
		PublicKey:   pk,
		Questions:   make([]*helios.Question, len(e.Questions)),
	}
	// sha1 stays implicit so the election hashes like any other Helios election
	if scheme != elgamal.DefaultHashScheme {
		out.ChallengeHash = scheme
	}
	for i, q := range e.Questions {
		out.Questions[i] = &helios.Question{
			Question:   q.Question,
			ShortName:  q.ShortName,
			Answers:    append([]string{}, q.Answers...),
			Min:        q.Min,
			Max:        q.Max,
			ResultType: q.ResultType,
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Simulation drives the in-memory election simulator.
type Simulation struct {
	Voters   int `toml:"voters"`
	Trustees int `toml:"trustees"`
	// Bits is the size of a freshly generated group, 0 meaning the Helios
	// standard 2048-bit group.
	Bits int `toml:"bits"`
	// Seed makes the run reproducible. Never set it for a real election.
	Seed string `toml:"seed"`
	// Abstain is the probability a voter leaves a question blank, where allowed.
	Abstain float64 `toml:"abstain"`
}

func (s *Simulation) applyDefaults() error {
	if s.Voters <= 0 {
		s.Voters = defaultVoters
	}
	if s.Trustees <= 0 {
		s.Trustees = defaultTrustees
	}
	if s.Bits < 0 {
		return errors.New("config: simulation bits cannot be negative")
	}
	if s.Abstain < 0 || s.Abstain >= 1 {
		return errors.New("config: simulation abstain must be in [0, 1)")
	}
	return nil
}

// Source is the randomness for the simulation.
func (s *Simulation) Source() io.Reader {
	if s.Seed == "" {
		return random.Reader()
	}
	return random.Deterministic([]byte(s.Seed))
}

// System is the group to run the simulation in.
func (s *Simulation) System(src io.Reader) (*elgamal.System, error) {
	if s.Bits == 0 {
		return elgamal.Helios2048(), nil
	}
	return elgamal.Generate(src, s.Bits)
}

// Config is the top level configuration.
type Config struct {
	// Workers bounds parallel verification and decryption, 0 meaning GOMAXPROCS.
	Workers    int         `toml:"workers"`
	Logging    *Logging    `toml:"logging"`
	Election   *Election   `toml:"election"`
	Simulation *Simulation `toml:"simulation"`
}

func (cfg *Config) validateAndApplyDefaults() error {
	if cfg.Workers < 0 {
		return errors.New("config: workers cannot be negative")
	}
	if cfg.Logging == nil {
		cfg.Logging = &Logging{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.Election == nil {
		return errors.New("config: No election block was present")
	}
	if _, err := elgamal.ParseHashScheme(cfg.Election.ChallengeHash); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(cfg.Election.Questions) == 0 {
		return errors.New("config: the election has no questions")
	}
	for i, q := range cfg.Election.Questions {
		if err := q.applyDefaults(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	if cfg.Simulation == nil {
		cfg.Simulation = &Simulation{}
	}
	return cfg.Simulation.applyDefaults()
}

// LoadBinary loads, parses and validates the provided buffer and returns the Config.
func LoadBinary(b []byte) (*Config, error) {
	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: unknown key %q", undecoded[0].String())
	}
	if err := cfg.validateAndApplyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load loads, parses and validates the provided file and returns the Config.
func Load(f string) (*Config, error) {
	b, err := os.ReadFile(filepath.Clean(f))
	if err != nil {
		return nil, err
	}
	return LoadBinary(b)
}
