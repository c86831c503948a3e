// Package wikipage parses encyclopedia article HTML into a Document that
// exposes only what the crawler needs: the title's subject, the infobox
// table with its rows and portrait, the body links and the paragraphs.
//
// Parsing is done with golang.org/x/net/html; queries run on a goquery
// document built from the parsed tree.
package wikipage
