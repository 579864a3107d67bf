// Package cli wires the cfgconv commands into a kong command line.
//
// Besides the commands of package cmd, the command line carries options that
// apply to every command:
//
//   - --log-level, --log-format, --log-time, --[no-]log-caller and
//     --[no-]log-pretty configure the package-level logger, which writes to
//     standard error
//   - --max-depth limits the nesting of dictionaries in every parsed document
//   - --pprof-mode and --pprof-dir write a runtime profile, when built with
//     the pprof tag:
//
//     go build -tags pprof .
//
// # Configuration file
//
// Flag defaults are read from config.cfg in the user configuration
// directory, written in the configuration language itself. The dictionary
// named config holds one entry per flag, and nested dictionaries name flag
// groups:
//
//	begin config
//	  log_level := "info";
//	  begin pprof
//	    mode := "heap";
//	  end;
//	end;
//
// The init command writes this file from the flags it was given. A JSON file
// of the same name with a .json suffix is also read, for tools that cannot
// write the configuration language.
package cli
