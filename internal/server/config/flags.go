package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/assetcatalog/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics HTTP bind address (e.g., ":9090")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-t int      presigned URL validity, minutes
//	-r int      recycle bin retention, days
//	-i int      recycle bin purge interval, minutes
//	-l string   log file path
//	-strict     treat AND searches without usable conditions as empty
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and then converted to
//     time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-t", "-r", "-i", "-l",
	}, "-strict")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.EndpointAddrMetrics, "m", config.EndpointAddrMetrics, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	presignValidity := fs.Int("t", int(config.PresignValidity.Minutes()), "presigned URL validity (in minutes)")
	retention := fs.Int("r", int(config.RetentionPeriod.Hours()/24), "recycle bin retention (in days)")
	purgeInterval := fs.Int("i", int(config.PurgeInterval.Minutes()), "recycle bin purge interval (in minutes)")

	fs.StringVar(&config.LogFile, "l", config.LogFile, "log file")
	fs.BoolVar(&config.StrictEmptyAnd, "strict", config.StrictEmptyAnd, "AND searches without usable conditions match nothing")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.PresignValidity = time.Duration(*presignValidity) * time.Minute
	config.RetentionPeriod = time.Duration(*retention) * 24 * time.Hour
	config.PurgeInterval = time.Duration(*purgeInterval) * time.Minute
}
