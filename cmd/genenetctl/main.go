package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"genenet/internal/config"
	"genenet/internal/scape"
	"genenet/internal/storage"
	"genenet/pkg/genenet"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "create":
		return runCreate(ctx, args[1:])
	case "train":
		return runTrain(ctx, args[1:])
	case "list":
		return runList(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "query":
		return runQuery(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "import":
		return runImport(ctx, args[1:])
	case "delete":
		return runDelete(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

// storeFlags registers the backend flags every command shares.
type storeFlags struct {
	kind   *string
	dbPath *string
}

func addStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		kind:   fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath: fs.String("db-path", "genenet.db", "sqlite database path"),
	}
}

func (s storeFlags) open(ctx context.Context) (*genenet.Client, error) {
	client, err := genenet.New(genenet.Options{StoreKind: *s.kind, DBPath: *s.dbPath})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	stores := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := stores.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Printf("initialized store=%s\n", *stores.kind)
	return nil
}

// runFlags are the population and training settings shared by create and train.
// Values come from -config first and are then overridden by flags set explicitly.
type runFlags struct {
	configPath  *string
	id          *string
	scapeName   *string
	size        *int
	topology    *string
	selection   *float64
	elitism     *float64
	reproduce   *float64
	mutation    *float64
	generations *int
	seed        *int64
	workers     *int
	fitnessGoal *float64
	words       *string
}

func addRunFlags(fs *flag.FlagSet) runFlags {
	def := config.Default()
	return runFlags{
		configPath:  fs.String("config", "", "ini config file"),
		id:          fs.String("id", "", "population id (generated when empty)"),
		scapeName:   fs.String("scape", def.Run.Scape, "fitness task: "+strings.Join(scape.List(), "|")),
		size:        fs.Int("pop", def.Population.Size, "population size"),
		topology:    fs.String("topology", "", "space or comma separated layer widths (scape default when empty)"),
		selection:   fs.Float64("selection", def.Rates.Selection, "selection rate"),
		elitism:     fs.Float64("elitism", def.Rates.Elitism, "elitism rate"),
		reproduce:   fs.Float64("reproduction", def.Rates.Reproduction, "reproduction rate"),
		mutation:    fs.Float64("mutation", def.Rates.Mutation, "mutation rate"),
		generations: fs.Int("gens", def.Run.Generations, "generations to train"),
		seed:        fs.Int64("seed", 0, "random seed (clock when 0)"),
		workers:     fs.Int("workers", 0, "fitness workers (cpu count when 0)"),
		fitnessGoal: fs.Float64("fitness-goal", 0, "stop once the best fitness reaches this value (0 disables)"),
		words:       fs.String("words", "", "word list file for text-similarity"),
	}
}

// resolve merges the config file with explicitly set flags. The [store] section
// of a config file applies unless the store flags were set.
func (r runFlags) resolve(fs *flag.FlagSet, stores storeFlags) (config.Config, error) {
	cfg := config.Default()
	if *r.configPath != "" {
		loaded, err := config.Load(*r.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	if setFlags["scape"] {
		cfg.Run.Scape = *r.scapeName
	}
	if setFlags["pop"] {
		cfg.Population.Size = *r.size
	}
	if setFlags["topology"] {
		topology, err := parseWidths(*r.topology)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Population.Topology = topology
	}
	if setFlags["selection"] {
		cfg.Rates.Selection = *r.selection
	}
	if setFlags["elitism"] {
		cfg.Rates.Elitism = *r.elitism
	}
	if setFlags["reproduction"] {
		cfg.Rates.Reproduction = *r.reproduce
	}
	if setFlags["mutation"] {
		cfg.Rates.Mutation = *r.mutation
	}
	if setFlags["gens"] {
		cfg.Run.Generations = *r.generations
	}
	if setFlags["seed"] {
		cfg.Run.Seed = *r.seed
	}
	if setFlags["workers"] {
		cfg.Run.Workers = *r.workers
	}
	if setFlags["fitness-goal"] {
		cfg.Run.FitnessGoal = *r.fitnessGoal
	}
	if setFlags["words"] {
		cfg.Run.Words = *r.words
	}
	if *r.configPath != "" {
		if !setFlags["store"] {
			*stores.kind = cfg.Store.Kind
		}
		if !setFlags["db-path"] {
			*stores.dbPath = cfg.Store.DBPath
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func createRequest(id string, cfg config.Config) genenet.CreateRequest {
	return genenet.CreateRequest{
		ID:       id,
		Scape:    cfg.Run.Scape,
		Size:     cfg.Population.Size,
		Topology: cfg.Population.Topology,
		Rates: &genenet.Rates{
			Selection:    cfg.Rates.Selection,
			Elitism:      cfg.Rates.Elitism,
			Reproduction: cfg.Rates.Reproduction,
			Mutation:     cfg.Rates.Mutation,
		},
		Seed: cfg.Run.Seed,
	}
}

func runCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	stores := addStoreFlags(fs)
	flags := addRunFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := flags.resolve(fs, stores)
	if err != nil {
		return err
	}

	client, err := stores.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Create(ctx, createRequest(*flags.id, cfg))
	if err != nil {
		return err
	}
	printPopulation(summary)
	return nil
}

// runTrain trains a stored population. With -file the population is read from
// and written back to a document file, created first when the file is missing.
// Without -id and -file a fresh population is created in the store.
func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	stores := addStoreFlags(fs)
	flags := addRunFlags(fs)
	file := fs.String("file", "", "population document to resume from and save to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := flags.resolve(fs, stores)
	if err != nil {
		return err
	}

	client, err := stores.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	id := *flags.id
	switch {
	case *file != "" && fileExists(*file):
		summary, err := client.Import(ctx, *file)
		if err != nil {
			return err
		}
		id = summary.ID
		fmt.Printf("resumed population=%s generation=%s\n", id, humanize.Comma(int64(summary.Generation)))
	case id == "" || *file != "":
		summary, err := client.Create(ctx, createRequest(id, cfg))
		if err != nil {
			return err
		}
		id = summary.ID
		fmt.Printf("created population=%s size=%s\n", id, humanize.Comma(int64(summary.Size)))
	}

	var words []string
	if cfg.Run.Words != "" {
		if words, err = scape.LoadWords(cfg.Run.Words); err != nil {
			return err
		}
	}

	result, err := client.Train(ctx, genenet.TrainRequest{
		PopulationID: id,
		Generations:  cfg.Run.Generations,
		Seed:         cfg.Run.Seed,
		Workers:      cfg.Run.Workers,
		FitnessGoal:  fitnessGoal(cfg.Run.FitnessGoal),
		Words:        words,
	})
	if err != nil {
		return err
	}
	for i, best := range result.BestByGeneration {
		fmt.Printf("generation %d best_fitness=%.6f\n", result.Generation-result.Generations+i, best)
	}
	fmt.Printf("trained population=%s generations=%s final_best_fitness=%.6f goal_reached=%t\n",
		id, humanize.Comma(int64(result.Generations)), result.FinalBestFitness, result.GoalReached)

	if *file != "" {
		if err := client.Export(ctx, id, *file); err != nil {
			return err
		}
		fmt.Printf("saved population=%s file=%s\n", id, *file)
	}
	return nil
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	stores := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := stores.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summaries, err := client.Populations(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("no populations")
		return nil
	}
	for _, summary := range summaries {
		printPopulation(summary)
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	stores := addStoreFlags(fs)
	id := fs.String("id", "", "population id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("show requires --id")
	}

	client, err := stores.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Population(ctx, *id)
	if err != nil {
		return err
	}
	printPopulation(summary)
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	stores := addStoreFlags(fs)
	id := fs.String("id", "", "population id")
	limit := fs.Int("limit", 0, "show only the most recent generations (0 shows all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("history requires --id")
	}
	if *limit < 0 {
		return errors.New("limit must be >= 0")
	}

	client, err := stores.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, *id)
	if err != nil {
		return err
	}
	if *limit > 0 && len(diagnostics) > *limit {
		diagnostics = diagnostics[len(diagnostics)-*limit:]
	}
	for _, d := range diagnostics {
		fmt.Printf("generation=%d size=%s best=%.6f mean=%.6f min=%.6f\n",
			d.Generation, humanize.Comma(int64(d.Size)), d.BestFitness, d.MeanFitness, d.MinFitness)
	}
	return nil
}

func runQuery(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	stores := addStoreFlags(fs)
	id := fs.String("id", "", "population id")
	file := fs.String("file", "", "population document to query instead of the store")
	inputs := fs.String("inputs", "", "space or comma separated input values")
	left := fs.String("left", "", "first word of a text-similarity pair")
	right := fs.String("right", "", "second word of a text-similarity pair")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var values []float64
	switch {
	case *inputs != "" && (*left != "" || *right != ""):
		return errors.New("use either --inputs or --left/--right")
	case *inputs != "":
		parsed, err := parseValues(*inputs)
		if err != nil {
			return err
		}
		values = parsed
	case *left != "" || *right != "":
		values = scape.PairInput(*left, *right)
	default:
		return errors.New("query requires --inputs or --left/--right")
	}

	client, err := stores.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if *file != "" {
		summary, err := client.Import(ctx, *file)
		if err != nil {
			return err
		}
		*id = summary.ID
	}
	if *id == "" {
		return errors.New("query requires --id or --file")
	}

	out, err := client.Query(ctx, *id, values)
	if err != nil {
		return err
	}
	formatted := make([]string, len(out))
	for i, v := range out {
		formatted[i] = strconv.FormatFloat(v, 'f', 6, 64)
	}
	fmt.Printf("population=%s outputs=[%s]\n", *id, strings.Join(formatted, " "))
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	stores := addStoreFlags(fs)
	id := fs.String("id", "", "population id")
	out := fs.String("out", "", "output document path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *out == "" {
		return errors.New("export requires --id and --out")
	}

	client, err := stores.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Export(ctx, *id, *out); err != nil {
		return err
	}
	info, err := os.Stat(*out)
	if err != nil {
		return err
	}
	fmt.Printf("exported population=%s file=%s size=%s\n", *id, *out, humanize.Bytes(uint64(info.Size())))
	return nil
}

func runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	stores := addStoreFlags(fs)
	in := fs.String("in", "", "input document path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("import requires --in")
	}

	client, err := stores.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Import(ctx, *in)
	if err != nil {
		return err
	}
	fmt.Print("imported ")
	printPopulation(summary)
	return nil
}

func runDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	stores := addStoreFlags(fs)
	id := fs.String("id", "", "population id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("delete requires --id")
	}

	client, err := stores.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("deleted population=%s\n", *id)
	return nil
}

func printPopulation(s genenet.PopulationSummary) {
	fmt.Printf("population=%s scape=%s topology=%v size=%s generation=%s genome_length=%s champion=%t rates=%.3f/%.3f/%.3f/%.3f\n",
		s.ID, s.Scape, s.Topology,
		humanize.Comma(int64(s.Size)),
		humanize.Comma(int64(s.Generation)),
		humanize.Comma(int64(s.GenomeLength)),
		s.HasChampion,
		s.Rates.Selection, s.Rates.Elitism, s.Rates.Reproduction, s.Rates.Mutation,
	)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// fitnessGoal maps an unbounded goal to the client's "no goal" value.
func fitnessGoal(goal float64) float64 {
	if math.IsInf(goal, 1) {
		return 0
	}
	return goal
}

func parseWidths(raw string) ([]int, error) {
	fields := splitList(raw)
	widths := make([]int, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid layer width %q: %w", field, err)
		}
		widths = append(widths, v)
	}
	return widths, nil
}

func parseValues(raw string) ([]float64, error) {
	fields := splitList(raw)
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid input value %q: %w", field, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func splitList(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: genenetctl <init|create|train|list|show|history|query|export|import|delete> [flags]", msg)
}
