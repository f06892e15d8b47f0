// Package config provides configuration parsing for TNT projects.
//
// The configuration is stored in tnt.json at the project root. An optional
// .env file next to it and the process environment override a few settings
// (TNT_PORT, TNT_HOST, TNT_LOG_LEVEL, TNT_PUBLISH_TARGET,
// TNT_MAX_EFFECT_DEPTH). Invalid settings are reported as E008.
//
// # Configuration File Structure
//
//	{
//	  "template": "index.html",
//	  "container": "app",
//	  "data": "data.json",
//	  "dev": {"host": "localhost", "port": 3000},
//	  "reactivity": {"maxDepth": 100, "retainNested": false},
//	  "eval": {"cacheSize": 512},
//	  "publish": {"target": "s3://bucket/prefix", "region": "us-east-1"},
//	  "log": {"level": "info", "format": "text"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Port:", cfg.Dev.Port)
package config
