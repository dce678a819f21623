package browser

import (
	"encoding/json"
	"fmt"

	"github.com/nao1215/webwaiter/internal/dom"
)

// captureScript gathers everything the extraction routines need in one
// evaluation. The two %s verbs receive JSON arrays of selectors and global
// paths.
const captureScript = `(() => {
	const selectors = %s;
	const globals = %s;

	const styles = {};
	for (const sel of selectors) {
		let nodes = [];
		try {
			nodes = Array.from(document.querySelectorAll(sel));
		} catch (e) {
			nodes = [];
		}
		styles[sel] = nodes.map((el) => {
			const cs = window.getComputedStyle(el);
			return {
				backgroundColor: cs.backgroundColor,
				color: cs.color,
				borderColor: cs.borderColor,
			};
		});
	}

	const types = {};
	for (const path of globals) {
		let value = window;
		let type = 'undefined';
		try {
			for (const part of path.split('.')) {
				if (value === undefined || value === null) {
					value = undefined;
					break;
				}
				value = value[part];
			}
			type = typeof value;
		} catch (e) {
			type = 'undefined';
		}
		types[path] = type;
	}

	return {
		url: window.location.href,
		html: document.documentElement ? document.documentElement.outerHTML : '',
		title: document.title || '',
		charset: document.characterSet || '',
		lang: document.documentElement ? document.documentElement.lang || '' : '',
		styles: styles,
		globals: types,
	};
})()`

// capture is the value returned by captureScript.
type capture struct {
	URL     string                 `json:"url"`
	HTML    string                 `json:"html"`
	Title   string                 `json:"title"`
	Charset string                 `json:"charset"`
	Lang    string                 `json:"lang"`
	Styles  map[string][]dom.Style `json:"styles"`
	Globals map[string]string      `json:"globals"`
}

// buildScript renders captureScript for the given selectors and globals.
func buildScript(selectors, globals []string) (string, error) {
	if selectors == nil {
		selectors = []string{}
	}
	if globals == nil {
		globals = []string{}
	}
	sel, err := json.Marshal(selectors)
	if err != nil {
		return "", fmt.Errorf("failed to encode selectors: %w", err)
	}
	glob, err := json.Marshal(globals)
	if err != nil {
		return "", fmt.Errorf("failed to encode globals: %w", err)
	}
	return fmt.Sprintf(captureScript, sel, glob), nil
}

// snapshot turns a capture into a document. The title, charset and lang
// reported by the live page win over what the serialized markup says.
func (c capture) snapshot() (*dom.Snapshot, error) {
	return dom.NewSnapshot(c.URL, c.HTML,
		dom.WithTitle(c.Title),
		dom.WithCharset(c.Charset),
		dom.WithLang(c.Lang),
		dom.WithStyles(c.Styles),
		dom.WithGlobals(c.Globals),
	)
}
