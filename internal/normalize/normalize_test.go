package normalize

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips explanation suffix",
			input: "ビルド完了です。Explanation: this tells the user the build finished.",
			want:  "ビルド完了です。",
		},
		{
			name:  "fraction",
			input: "1/2が完了しました",
			want:  "1分の2が完了しました",
		},
		{
			name:  "single decimal point",
			input: "バージョン3.2です",
			want:  "バージョン3てん2です",
		},
		{
			name:  "chained decimal points",
			input: "3.2.1",
			want:  "3てん2てん1",
		},
		{
			name:  "wave dash between digits",
			input: "1〜3番",
			want:  "1から3番",
		},
		{
			name:  "full width wave dash",
			input: "1～3番",
			want:  "1から3番",
		},
		{
			name:  "percent sign",
			input: "50%完了",
			want:  "50パーセント完了",
		},
		{
			name:  "fullwidth percent sign",
			input: "50％完了",
			want:  "50パーセント完了",
		},
		{
			name:  "remaining dot becomes space",
			input: "a.b",
			want:  "a b",
		},
		{
			name:  "dash and underscore become spaces",
			input: "foo-bar_baz",
			want:  "foo bar baz",
		},
		{
			name:  "long uppercase run is title cased",
			input: "BUILD complete",
			want:  "Build complete",
		},
		{
			name:  "short uppercase run is untouched",
			input: "OK done",
			want:  "OK done",
		},
		{
			name:  "whitespace removed between ascii and japanese",
			input: "CI 完了",
			want:  "CI完了",
		},
		{
			name:  "whitespace removed between japanese and ascii",
			input: "完了 CI",
			want:  "完了CI",
		},
		{
			name:  "whitespace removed between letter and digit",
			input: "v 2",
			want:  "v2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"バージョン3.2.1です",
		"BUILD-complete_now 50%",
		"1〜3番、CI 完了",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}
