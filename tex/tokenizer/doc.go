// Package tokenizer converts TeX input lines into a stream of tokens.
//
// The category codes of characters are looked up while reading, so
// that assignments made by the interpreter affect the very next token.
package tokenizer
