// Package main provides localization for the camgrid CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Output":        "出力先",
		"Discovery":     "収録の検索",
		"Configuration": "設定",
		"Video":         "動画",
		"Overlay":       "タイムコード表示",
		"Tools":         "外部ツール",
		"Debug":         "デバッグ",
		"Logging":       "ログ",

		// Root command
		"Merge multi-camera recordings into a synchronized grid video": "複数カメラの収録を同期したグリッド動画に結合",

		"camgrid resamples cameras with different frame rates to a common cadence, arranges them in a grid and burns in a running timecode.": "camgridはフレームレートの異なるカメラを共通のレートに揃え、グリッド状に並べてタイムコードを焼き込みます。",

		// Commands
		"Merge camera files into one grid video":        "カメラファイルを1つのグリッド動画に結合",
		"Merge every recording found under a directory": "ディレクトリ配下の全ての収録を結合",
		"Show version information":                      "バージョン情報を表示",
		"camgrid version %s":                            "camgrid バージョン %s",

		// Output flags
		"Output video file path (required)":                            "出力動画ファイルパス（必須）",
		"Extension of the merged video written next to each recording": "各収録の隣に書き出す結合動画の拡張子",
		"Output execution summary to file (Markdown format)":           "実行サマリーをファイルに出力（Markdown形式）",

		// Discovery flags
		"Number of recordings merged in parallel":                                 "並列に結合する収録数",
		"Glob matching recording files (e.g., *.qtm)":                             "収録ファイルに一致するパターン（例: *.qtm）",
		"Glob appended to the recording name to find cameras (e.g., _Miqus*.avi)": "カメラを探すため収録名に付けるパターン（例: _Miqus*.avi）",

		// Video flags
		"YAML configuration file":                    "YAML設定ファイル",
		"Output codec (h264, av1)":                   "出力コーデック（h264, av1）",
		"Clear the canvas before every output frame": "出力フレームごとにキャンバスを消去",
		"Background color (hex, e.g., #000000)":      "背景色（16進数、例: #000000）",

		// Overlay flags
		"Timecode position (top-left, center)":                          "タイムコードの位置（top-left, center）",
		"Timecode font size in points":                                  "タイムコードのフォントサイズ（ポイント）",
		"TrueType font file for the timecode":                           "タイムコード用のTrueTypeフォントファイル",
		"Start the clock at 00:00:00 when no camera carries a timecode": "タイムコードを持つカメラがない場合は 00:00:00 から開始",

		// Tool flags
		"Path to ffmpeg executable":  "ffmpeg実行ファイルのパス",
		"Path to ffprobe executable": "ffprobe実行ファイルのパス",

		// Debug flags
		"Enable debug output":        "デバッグ出力を有効化",
		"Directory for debug output": "デバッグ出力のディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Error messages
		"At least one camera file is required":  "カメラファイルが1つ以上必要です",
		"A root directory argument is required": "ルートディレクトリ引数が必要です",
		"%d recordings failed":                  "%d 件の収録の結合に失敗しました",

		// Summary content
		"Merge Summary": "結合サマリー",
		"Root":          "ルート",
		"Generated":     "生成日時",
		"Version":       "バージョン",
		"Recording":     "収録",
		"Status":        "状態",
		"Cameras":       "カメラ",
		"Grid":          "グリッド",
		"Canvas":        "キャンバス",
		"Rate":          "レート",
		"Bit rate":      "ビットレート",
		"Frames":        "フレーム数",
		"Timecode":      "タイムコード",
		"Size":          "サイズ",
		"Time":          "所要時間",
		"merged":        "結合済み",
		"skipped":       "スキップ",
		"no cameras":    "カメラなし",
		"failed":        "失敗",
		"workers":       "ワーカー",
	})
}
