// Package renderer draws the editor state to the terminal.
//
// Each frame is composed into one in-memory buffer and flushed with a single
// Write, so the terminal never shows a partially drawn screen:
//
//	ESC[?25l ESC[H                  hide cursor, home
//	<row 0> ESC[0K \r\n             visible slice of each buffer line
//	...
//	~ ESC[0K \r\n                   end-of-buffer marker past the last line
//	~ ESC[0K                        no line break after the last row
//	ESC[r;cH ESC[?25h               place and show the cursor
//
// Usage:
//
//	r := renderer.New(driver, renderer.WithWelcome(renderer.DefaultWelcome("0.1.0")))
//	if err := r.Render(state); err != nil {
//	    // short or failed writes are reported but not retried
//	}
package renderer
