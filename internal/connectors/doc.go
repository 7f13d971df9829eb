// Package connectors contains adapters that pull source content from
// external platforms.
//
// Each connector lives in its own subpackage and implements a driven port.
// The youtube connector implements driven.CaptionProvider.
package connectors
