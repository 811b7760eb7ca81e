package config

const (
	defaultModel       = "medium"
	defaultLanguage    = "ja"
	defaultDevice      = "cuda"
	defaultComputeType = "float16"
	defaultSRTSuffix   = ".ja.srt"
	defaultHost        = "0.0.0.0"
	defaultPort        = 9876
	defaultFFmpegPath  = "ffmpeg"
	defaultWhisperPath = "whisper-ctranslate2"
	defaultLogLevel    = "info"
	defaultLogFormat   = "console"
)

// defaultHallucinationPhrases are boilerplate sign-off lines Whisper emits
// over silence or music. Segments whose trimmed text matches one exactly are
// dropped from the subtitle output.
var defaultHallucinationPhrases = []string{
	"ご視聴ありがとうございました",
	"チャンネル登録よろしくお願いします",
	"チャンネル登録お願いいたします",
	"視聴ありがとうございました",
	"おやすみなさい",
	"チョコレート",
	"ご視聴ありがとうございます",
	"チャンネル登録",
	"最後までご視聴ありがとうございました",
}

func defaultSubtitleCodecMap() map[string]string {
	return map[string]string{
		".mkv":  "srt",
		".mp4":  "mov_text",
		".m4v":  "mov_text",
		".mov":  "mov_text",
		".webm": "webvtt",
	}
}

// Default returns the built-in configuration used when no file is present.
func Default() *Config {
	return &Config{
		Model:                defaultModel,
		Language:             defaultLanguage,
		Device:               defaultDevice,
		ComputeType:          defaultComputeType,
		OverwriteExisting:    false,
		SRTSuffix:            defaultSRTSuffix,
		MaxConcurrentJobs:    1,
		Host:                 defaultHost,
		Port:                 defaultPort,
		MuxSubtitles:         true,
		FFmpegPath:           defaultFFmpegPath,
		WhisperPath:          defaultWhisperPath,
		SubtitleCodecMap:     defaultSubtitleCodecMap(),
		HallucinationPhrases: append([]string(nil), defaultHallucinationPhrases...),
		LogLevel:             defaultLogLevel,
		LogFormat:            defaultLogFormat,
	}
}
