package audio

import (
	"context"
	"io"
	"os/exec"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"layeh.com/gopus"

	"github.com/katsuwo/eniwa/pkg/player"
)

const (
	sampleRate = 48000
	channels   = 2
	frameSize  = 960                      // 20ms at 48kHz
	frameBytes = frameSize * channels * 2 // s16le
	bitrate    = 128000
)

// FrameSink receives encoded Opus frames. The voice session implements it.
type FrameSink interface {
	WriteOpus(ctx context.Context, frame []byte) error
	Speaking(bool) error
}

// Player decodes a resource's stream through ffmpeg, encodes it to Opus and
// feeds it into a frame sink. It plays one resource at a time and reports
// idle/playing transitions to its listeners.
type Player struct {
	sink FrameSink
	log  zerolog.Logger

	mu        sync.Mutex
	state     player.PlayerState
	listeners []func(prev, next player.PlayerState)
	errFns    []func(error)
	cancel    context.CancelFunc
}

// NewPlayer creates an idle player writing into the given sink.
func NewPlayer(sink FrameSink, log zerolog.Logger) *Player {
	return &Player{
		sink:  sink,
		log:   log.With().Str("component", "audio").Logger(),
		state: player.PlayerState{Status: player.PlayerIdle},
	}
}

// Play starts streaming the resource. It fails if the player is busy or the
// decode pipeline cannot be started; once it returns nil the player is in
// the playing state and will transition back to idle when the stream ends,
// errors out or is stopped.
func (p *Player) Play(res player.Resource) error {
	ar, ok := res.(*Resource)
	if !ok {
		return errors.Errorf("unsupported resource type %T", res)
	}

	p.mu.Lock()
	if p.state.Status != player.PlayerIdle {
		p.mu.Unlock()
		return errors.New("player is busy")
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	cmd := ffmpegCmd(ctx, ar.StreamURL())
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return errors.Wrap(err, "ffmpeg stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return errors.Wrap(err, "ffmpeg stderr pipe")
	}

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		cancel()
		return errors.Wrap(err, "create opus encoder")
	}
	encoder.SetBitrate(bitrate)

	if err := cmd.Start(); err != nil {
		cancel()
		return errors.Wrap(err, "start ffmpeg")
	}
	go drainStderr(stderr)

	p.setState(player.PlayerState{Status: player.PlayerPlaying, Resource: res})
	go p.stream(ctx, cmd, stdout, encoder, res)
	return nil
}

// Stop aborts the current stream, if any. The idle transition is emitted by
// the streaming goroutine once it winds down.
func (p *Player) Stop(force bool) {
	p.mu.Lock()
	cancel := p.cancel
	playing := p.state.Status != player.PlayerIdle
	p.mu.Unlock()

	if playing && cancel != nil {
		p.log.Debug().Bool("force", force).Msg("stopping playback")
		cancel()
	}
}

// State returns the current player state.
func (p *Player) State() player.PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// OnStateChange registers a state transition listener.
func (p *Player) OnStateChange(fn func(prev, next player.PlayerState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// OnError registers a playback error listener.
func (p *Player) OnError(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errFns = append(p.errFns, fn)
}

func (p *Player) setState(next player.PlayerState) {
	p.mu.Lock()
	prev := p.state
	p.state = next
	listeners := append([]func(prev, next player.PlayerState){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(prev, next)
	}
}

func (p *Player) emitError(err error) {
	p.mu.Lock()
	errFns := append([]func(error){}, p.errFns...)
	p.mu.Unlock()
	for _, fn := range errFns {
		fn(err)
	}
}

// stream pumps PCM from ffmpeg into the sink as Opus until EOF, error or
// cancellation, then puts the player back to idle.
func (p *Player) stream(ctx context.Context, cmd *exec.Cmd, pcm io.Reader, encoder *gopus.Encoder, res player.Resource) {
	defer func() {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
		_ = p.sink.Speaking(false)
		_ = res.Close()
		p.setState(player.PlayerState{Status: player.PlayerIdle})
	}()

	if err := p.sink.Speaking(true); err != nil {
		p.emitError(errors.Wrap(err, "set speaking"))
		return
	}

	buf := make([]byte, frameBytes)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := io.ReadFull(pcm, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			if n > 0 {
				p.sendFrame(ctx, encoder, buf[:n])
			}
			p.log.Debug().Msg("stream ended")
			return
		}
		if err != nil {
			p.emitError(errors.Wrap(err, "read pcm"))
			return
		}
		if !p.sendFrame(ctx, encoder, buf) {
			return
		}
	}
}

func (p *Player) sendFrame(ctx context.Context, encoder *gopus.Encoder, raw []byte) bool {
	samples := bytesToInt16(raw)
	if len(samples) != frameSize*channels {
		padded := make([]int16, frameSize*channels)
		copy(padded, samples)
		samples = padded
	}

	frame, err := encoder.Encode(samples, frameSize, frameBytes)
	if err != nil {
		p.log.Warn().Err(err).Msg("opus encode failed, dropping frame")
		return true
	}
	if err := p.sink.WriteOpus(ctx, frame); err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.log.Warn().Err(err).Msg("frame sink blocked, dropping frame")
	}
	return true
}

// ffmpegCmd builds the PCM decode command. The reconnect flags let ffmpeg
// ride out brief upstream hiccups on long streams.
func ffmpegCmd(ctx context.Context, streamURL string) *exec.Cmd {
	return exec.CommandContext(ctx, "ffmpeg",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", streamURL,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", "48000",
		"-ac", "2",
		"-bufsize", "64k",
		"-")
}

// drainStderr keeps ffmpeg from blocking on a full stderr pipe.
func drainStderr(r io.ReadCloser) {
	defer r.Close()
	buf := make([]byte, 1024)
	for {
		if _, err := r.Read(buf); err != nil {
			return
		}
	}
}

func bytesToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return samples
}
