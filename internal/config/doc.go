// Package config provides configuration parsing for fsroutes projects.
//
// The configuration is stored in fsroutes.json (or fsroutes.yaml) at the
// project root. Every field is optional; missing fields take defaults.
//
// # Configuration File Structure
//
//	{
//	  "pagesDir": "pages",
//	  "serverDir": "server",
//	  "extensions": [".vue", ".tsx"],
//	  "ignorePrefix": "_",
//	  "inspect": {
//	    "host": "localhost",
//	    "port": 3100
//	  },
//	  "watch": {
//	    "interval": "250ms",
//	    "ignore": ["*.swp"]
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Pages:", cfg.PagesPath())
package config
