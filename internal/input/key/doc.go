// Package key defines the logical key codes produced by the input decoder.
//
// A Code is either a literal input byte (0-255) or one of the named
// navigation codes above that range. Control keys are literal bytes: Ctrl+Q
// is 0x11, Return is '\r' because raw mode disables CR to NL translation.
//
// Key specifications such as "Ctrl+Q", "<C-q>", "^Q", "PageDown" or "a" can
// be parsed with Parse, which is how configuration files bind keys.
package key
