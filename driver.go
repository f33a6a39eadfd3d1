package flightquery

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	log "github.com/sirupsen/logrus"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/airlinestats/flightquery/internal/pkg/awsinvoke"
	"github.com/airlinestats/flightquery/internal/pkg/tabfs"
)

// Driver controls the execution of an aggregation Job
type Driver struct {
	job      *Job
	config   *config
	executor executor
}

// config configures a Driver's execution of jobs
type config struct {
	InputLocation string
	WorkerCount   int
	CacheSize     int
	FunctionName  string
	Output        string
}

func newConfig() *config {
	loadConfig() // Load viper config from settings file(s) and environment
	return &config{
		InputLocation: viper.GetString("input_location"),
		WorkerCount:   viper.GetInt("worker_count"),
		CacheSize:     viper.GetInt("cache_size"),
		FunctionName:  viper.GetString("function_name"),
		Output:        viper.GetString("output"),
	}
}

// Option allows configuration of a Driver
type Option func(*config)

// NewDriver creates a new Driver with the provided job and optional configuration
func NewDriver(job *Job, options ...Option) *Driver {
	d := &Driver{
		job:      job,
		executor: localExecutor{},
	}

	c := newConfig()
	for _, f := range options {
		f(c)
	}

	if job.DescriptorName == "" {
		job.DescriptorName = viper.GetString("descriptor_name")
	}

	if viper.GetBool("verbose") {
		log.SetLevel(log.DebugLevel)
	}

	if c.WorkerCount < 1 {
		log.Warnf("Configured worker count %d is not positive; using 1", c.WorkerCount)
		c.WorkerCount = 1
	}

	d.config = c
	log.Debugf("Loaded config: %#v", c)

	return d
}

// WithInputLocation sets the table storage location of the Driver
func WithInputLocation(location string) Option {
	return func(c *config) {
		c.InputLocation = location
	}
}

// WithWorkerCount sets the size of the Driver's worker pool
func WithWorkerCount(n int) Option {
	return func(c *config) {
		c.WorkerCount = n
	}
}

// WithCacheSize sets the number of open table handles kept per process
func WithCacheSize(n int) Option {
	return func(c *config) {
		c.CacheSize = n
	}
}

// WithOutput sets the report output file of the Driver
func WithOutput(path string) Option {
	return func(c *config) {
		c.Output = path
	}
}

// run executes the aggregation: compute the partition key space, fan one
// task per key out over the worker pool, and collect results back in
// dispatch order. Any task failure aborts the run; no partial report is
// produced.
func (d *Driver) run() (*Report, error) {
	if runningInLambda() {
		currentJob = d.job
		lambda.Start(handleRequest)
	}

	store, err := tabfs.InferStore(d.config.InputLocation)
	if err != nil {
		return nil, err
	}
	tables, err := tabfs.NewCache(store, d.config.CacheSize)
	if err != nil {
		return nil, err
	}
	defer tables.Close()
	d.job.tables = tables
	d.job.config = d.config

	keys, err := d.job.partitionKeys()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		log.Warnf("No identified aircraft in table %s", d.job.DescriptorName)
		return &Report{}, nil
	}
	log.Debugf("Dispatching %d partition tasks over %d workers", len(keys), d.config.WorkerCount)

	bar := pb.New(len(keys)).Prefix("Aggregate").Start()
	results := make([]PartitionResult, len(keys))
	g, ctx := errgroup.WithContext(context.Background())
	sem := semaphore.NewWeighted(int64(d.config.WorkerCount))
	for i, tailNum := range keys {
		if err := sem.Acquire(ctx, 1); err != nil {
			break // a task already failed
		}
		i, tailNum := i, tailNum
		g.Go(func() error {
			defer sem.Release(1)
			defer bar.Increment()
			result, err := d.executor.RunPartition(d.job, i, tailNum)
			if err != nil {
				return fmt.Errorf("task %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	err = g.Wait()
	bar.Finish()
	if err != nil {
		return nil, err
	}

	return &Report{Results: results}, nil
}

var lambdaFlag = pflag.Bool("lambda", false, "Execute partition tasks on AWS Lambda")
var outputFlag = pflag.StringP("out", "o", "", "Report output file (defaults to stdout)")
var verboseFlag = pflag.BoolP("verbose", "v", false, "Enable debug logging")
var workersFlag = pflag.Int("workers", 0, "Worker pool size (overrides worker_count)")
var tableFlag = pflag.String("table", "", "Table name (overrides descriptor_name)")

// Main starts the Driver, parsing options from the command line. The
// positional argument, if given, overrides the input location.
func (d *Driver) Main() {
	pflag.Parse()

	if *verboseFlag {
		log.SetLevel(log.DebugLevel)
	}
	if args := pflag.Args(); len(args) > 0 {
		d.config.InputLocation = args[0]
	}
	if *workersFlag > 0 {
		d.config.WorkerCount = *workersFlag
	}
	if *tableFlag != "" {
		d.job.DescriptorName = *tableFlag
	}
	if *outputFlag != "" {
		d.config.Output = *outputFlag
	}
	if *lambdaFlag {
		d.executor = &lambdaExecutor{
			awsinvoke.NewClient(),
			d.config.FunctionName,
		}
	}

	start := time.Now()
	report, err := d.run()
	if err != nil {
		log.Fatalf("Aggregation failed: %s", err)
	}
	end := time.Now()

	var out io.Writer = os.Stdout
	if d.config.Output != "" {
		file, err := os.Create(d.config.Output)
		if err != nil {
			log.Fatal(err)
		}
		defer file.Close()
		out = file
	}
	if _, err := report.WriteTo(out); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Job Execution Time: %s\n", end.Sub(start))
}
