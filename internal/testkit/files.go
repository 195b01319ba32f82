// Package testkit holds sample payloads and lightweight in-memory fakes
// shared by package tests.
package testkit

// Minimal file headers that content sniffing recognises. Each is padded so
// detectors reading a fixed prefix see a full buffer.
var (
	SamplePNG  = pad("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	SampleJPEG = pad("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	SampleGIF  = pad("GIF89a")
	SampleWEBP = pad("RIFF\x24\x00\x00\x00WEBPVP8 ")
	SamplePDF  = pad("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	SampleEXE  = pad("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff")
)

func pad(header string) []byte {
	return append([]byte(header), make([]byte, 64)...)
}
