// Package config loads popular's configuration.
//
// Settings are read with viper from popular.yaml in the working directory
// (or the file passed with --config), overridden by POPULAR_* environment
// variables and command-line flags bound by the CLI:
//
//	server:
//	  host: ""
//	  port: 3000
//	  shutdown_timeout: 10s
//	github:
//	  base_url: https://api.github.com
//	  token: ""          # POPULAR_GITHUB_TOKEN
//	  timeout: 0s        # 0 disables the timeout
//	static:
//	  dir: public
//	  prefix: /static/
//	  s3:
//	    bucket: ""       # serve the bundle from S3 when set
//	metrics:
//	  enabled: true
//	  path: /metrics
//	log:
//	  level: info
//	  format: text
//
// # Usage
//
//	v := viper.New()
//	if err := config.Init(v, ""); err != nil {
//	    return err
//	}
//	cfg, err := config.Load(v)
package config
