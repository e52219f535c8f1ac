package system

import (
	"errors"
	"log"
	"sort"

	"github.com/milk9111/heartwindow/ecs"
)

const (
	defaultCharsPerTick = 0.75
	defaultHoldTicks    = 90
)

var ErrUnknownScript = errors.New("dialogue: unknown script")

// DialogueSystem plays narration one line at a time with a typewriter
// reveal. Subscribers hear about every script that finishes, by id.
type DialogueSystem struct {
	scripts      map[string][]string
	charsPerTick float64
	holdTicks    int

	id      string
	lines   [][]rune
	line    int
	shown   float64
	hold    int
	playing bool

	nextSub uint64
	subs    map[uint64]func(id string)
}

func NewDialogueSystem(scripts map[string][]string) *DialogueSystem {
	return &DialogueSystem{
		scripts:      scripts,
		charsPerTick: defaultCharsPerTick,
		holdTicks:    defaultHoldTicks,
		subs:         make(map[uint64]func(id string)),
	}
}

func (d *DialogueSystem) SetScripts(scripts map[string][]string) {
	if d == nil {
		return
	}
	d.scripts = scripts
}

// SetPace sets the reveal speed and how long a finished line stays up.
func (d *DialogueSystem) SetPace(charsPerTick float64, holdTicks int) {
	if d == nil {
		return
	}
	if charsPerTick > 0 {
		d.charsPerTick = charsPerTick
	}
	if holdTicks >= 0 {
		d.holdTicks = holdTicks
	}
}

// Subscribe registers fn for completion notifications. The returned func
// unsubscribes and may be called from inside fn.
func (d *DialogueSystem) Subscribe(fn func(id string)) func() {
	if d == nil || fn == nil {
		return func() {}
	}
	if d.subs == nil {
		d.subs = make(map[uint64]func(id string))
	}
	d.nextSub++
	id := d.nextSub
	d.subs[id] = fn
	return func() { delete(d.subs, id) }
}

// PlayScript starts the named script. A script already playing is completed
// first. Unknown ids log and complete immediately.
func (d *DialogueSystem) PlayScript(id string) {
	if d == nil {
		return
	}
	lines, ok := d.scripts[id]
	if !ok || len(lines) == 0 {
		if !ok {
			log.Printf("dialogue: play %q: %v", id, ErrUnknownScript)
		}
		d.finishCurrent()
		d.complete(id)
		return
	}
	d.start(id, lines)
}

// PlayText shows a single unnamed line.
func (d *DialogueSystem) PlayText(text string) {
	if d == nil || text == "" {
		return
	}
	d.start("", []string{text})
}

func (d *DialogueSystem) start(id string, lines []string) {
	d.finishCurrent()
	d.id = id
	d.lines = d.lines[:0]
	for _, l := range lines {
		d.lines = append(d.lines, []rune(l))
	}
	d.line = 0
	d.shown = 0
	d.hold = 0
	d.playing = true
}

func (d *DialogueSystem) finishCurrent() {
	if !d.playing {
		return
	}
	d.playing = false
	d.complete(d.id)
}

func (d *DialogueSystem) complete(id string) {
	keys := make([]uint64, 0, len(d.subs))
	for k := range d.subs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		if fn, ok := d.subs[k]; ok {
			fn(id)
		}
	}
}

func (d *DialogueSystem) Playing() bool { return d != nil && d.playing }

// ID is the playing script's id; empty for flavor text.
func (d *DialogueSystem) ID() string {
	if d == nil || !d.playing {
		return ""
	}
	return d.id
}

// Text is the revealed part of the current line.
func (d *DialogueSystem) Text() string {
	if d == nil || !d.playing || d.line >= len(d.lines) {
		return ""
	}
	cur := d.lines[d.line]
	n := int(d.shown)
	if n > len(cur) {
		n = len(cur)
	}
	return string(cur[:n])
}

// Skip reveals the current line, or moves past it if already revealed.
func (d *DialogueSystem) Skip() {
	if d == nil || !d.playing {
		return
	}
	cur := d.lines[d.line]
	if int(d.shown) < len(cur) {
		d.shown = float64(len(cur))
		return
	}
	d.advance()
}

func (d *DialogueSystem) advance() {
	d.line++
	d.shown = 0
	d.hold = 0
	if d.line >= len(d.lines) {
		d.playing = false
		d.complete(d.id)
	}
}

func (d *DialogueSystem) Update(_ *ecs.World) {
	if d == nil || !d.playing {
		return
	}
	cur := d.lines[d.line]
	if int(d.shown) < len(cur) {
		d.shown += d.charsPerTick
		return
	}
	d.hold++
	if d.hold >= d.holdTicks {
		d.advance()
	}
}
