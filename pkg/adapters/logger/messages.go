package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Merging %s: %d cameras -> %s":                  "%s を結合中: カメラ %d 台 -> %s",
		"Grid %dx%d, canvas %dx%d, %.3f fps, %d frames": "グリッド %dx%d, キャンバス %dx%d, %.3f fps, %d フレーム",
		"Merged %d/%d frames of %s":                     "%[3]s: %[1]d/%[2]d フレームを結合",
		"Merged %s: %d frames, %s to %s":                "%s を結合しました: %d フレーム, %s から %s",
		"Merge of %s interrupted at frame %d":           "%s の結合はフレーム %d で中断されました",
		"Reference timecode %s at %.0f Hz from %s":      "基準タイムコード %s (%.0f Hz, %s)",
		"No usable cameras for %s":                      "%s に使用できるカメラがありません",
		"No camera of %s has a frame to merge":          "%s のカメラにマージできるフレームがありません",
		"Output saved to %s":                            "出力を %s に保存しました",
		"Interrupted, shutting down...":                 "中断されました。シャットダウン中...",
		"Using %s and %s":                               "%s と %s を使用します",

		// Sources
		"Opened %s: %s %dx%d, %.3f fps, %d frames": "%s を開きました: %s %dx%d, %.3f fps, %d フレーム",
		"Skipping camera %s: %v":                   "カメラ %s をスキップ: %v",
		"No timecode in %s: %v":                    "%s にタイムコードがありません: %v",
		"Ignoring timecode %q in %s: %v":           "タイムコード %q を無視します (%s): %v",
		"Ignoring timecode frequency %q in %s: %v": "タイムコード周波数 %q を無視します (%s): %v",
		"Decoding %s: %dx%d at %.3f fps":           "%s をデコード中: %dx%d, %.3f fps",
		"End of %s after %d frames":                "%s は %d フレームで終了しました",
		"Container probe of %s failed: %v":         "%s のコンテナ解析に失敗しました: %v",
		"Failed to close %s: %v":                   "%s のクローズに失敗しました: %v",

		// Resample component
		"Frame pull failed for %s: %v":        "%s のフレーム取得に失敗しました: %v",
		"Source %s exhausted after %d frames": "%s は %d フレームで尽きました",
		"%s: %d ticks, %d decoded, %d failed": "%s: %d ティック, %d デコード, %d 失敗",

		// Composite component
		"Canvas %dx%d for %d sources in %dx%d grid": "キャンバス %dx%d (%d ソース, グリッド %dx%d)",

		// Output
		"Encoding %s with %s: %dx%d at %.3f fps, %d bps": "%s を %s でエンコード中: %dx%d, %.3f fps, %d bps",
		"No %s encoder in %s, falling back to %s (%s)":   "%[2]s に %[1]s エンコーダーがないため %[3]s (%[4]s) を使用します",
		"Encoding %s with %s":                            "%s を %s でエンコードします",
		"Wrote %d frames to %s":                          "%d フレームを %s に書き込みました",
		"Failed to open output %s: %v":                   "出力 %s を開けませんでした: %v",
		"Failed to write frame %d of %s: %v":             "フレーム %d の書き込みに失敗しました (%s): %v",
		"Failed to finalize output %s: %v":               "出力 %s の確定に失敗しました: %v",

		// Debug
		"Failed to save debug frame %d: %v":  "デバッグフレーム %d の保存に失敗しました: %v",
		"Failed to save job description: %v": "ジョブ記述の保存に失敗しました: %v",

		// Batch
		"Found %d recordings under %s":          "%[2]s に %[1]d 件の収録が見つかりました",
		"Merging %d recordings with %d workers": "%d 件の収録を %d ワーカーで結合中",
		"Skipping %s: %s already exists":        "%s をスキップ: %s は既に存在します",
		"Skipping %s: no cameras match %s":      "%s をスキップ: %s に一致するカメラがありません",
		"Merged %s in %s":                       "%s を %s で結合しました",
		"Failed to merge %s: %v":                "%s の結合に失敗しました: %v",
		"Failed to release lock %s: %v":         "ロック %s の解放に失敗しました: %v",
		"Cannot check %s: %v":                   "%s を確認できません: %v",
		"Summary saved to %s":                   "サマリーを %s に保存しました",
		"Failed to write summary: %s":           "サマリーの書き込みに失敗しました: %s",
	})
}
