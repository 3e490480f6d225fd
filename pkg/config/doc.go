/*
Package config loads the file form of the chunkrebase options.

	                  +-------------+
	                  |   Config    |
	                  | (Settings)  |
	                  +------+------+
	                         |
	      +------------------+------------------+
	      |                  |                  |
	+-----+-----+      +-----+-----+      +-----+-----+
	|   YAML    |      |    HCL    |      |   JSONC   |
	|  Parser   |      |  Parser   |      |  Parser   |
	+-----------+      +-----------+      +-----------+

🎯 Purpose:
- Reads .chunkrebase.{yaml,yml,hcl,json,jsonc}
- Rejects unknown keys and invalid globs
- Fills in the rewrite defaults
- Converts the file form into rewrite.Options and host.LoadOptions

🔄 Flow:
1. Picks a parser by file extension
2. Decodes into Config
3. Validate applies defaults
4. RewriteOptions and LoadOptions hand the values to the other packages

📝 Expressions:
A config file cannot carry code, so the two callback options have string forms.
resource_base_expr is a JavaScript expression where {placeholder} is replaced by
the widget placeholder. entry_chunks is a list of doublestar globs matched
against artifact file names.

🔍 Example:

	cfg, err := config.Load(ctx, ".chunkrebase.yaml")
	if err != nil {
		return err
	}

	rw, err := rewrite.New(cfg.RewriteOptions(reporter))
	if err != nil {
		return err
	}
*/
package config
