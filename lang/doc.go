// Package lang parses a small line-oriented configuration language into an
// ordered document that can be written as YAML, JSON, TOML, or back into
// the language itself.
//
// # Grammar
//
// Every construct occupies whole lines. Leading and trailing whitespace is
// ignored.
//
//	Line        → Blank | Comment | Constant | Dictionary
//	Comment     → '#' <text>
//	Constant    → Value '->' Identifier ';' [Comment]
//	Dictionary  → 'begin' Identifier NL (Assignment | Dictionary)* 'end' ...
//	Assignment  → Identifier ':=' Value ';'
//	Value       → String | Number | Array | Expression | Identifier
//	String      → '"' <text without quotes> '"'
//	Number      → -?digits[.digits]
//	Array       → '{' [element ('.' element)*] '}'
//	Expression  → '@[' postfix tokens ']'
//	Identifier  → [A-Za-z][A-Za-z0-9_]*
//
// Constants must be declared before they are used. Expressions are written
// in postfix notation with the operators + - * / and mod().
//
// # Example
//
//	# network settings
//	8080 -> port;
//	@[port 1 +] -> admin_port;
//	begin server
//	    host := "localhost";
//	    port := port;
//	    ports := {80. 443};
//	    begin admin
//	        port := admin_port;
//	    end;
//	end;
//
// converts to the YAML document
//
//	server:
//	  host: localhost
//	  port: 8080
//	  ports:
//	  - 80
//	  - 443
//	  admin:
//	    port: 8081
//
// # Errors
//
// Parsing stops at the first malformed line. Every error is an [*Error]
// that carries the 1-based line number and matches one sentinel, such as
// [ErrDuplicateKey], with [errors.Is].
//
// # Queries
//
// [Document.Query] evaluates an expr-lang expression with the document's
// dictionaries and constants in scope, along with builtins such as env()
// and mung.prefix().
package lang
