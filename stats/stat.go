package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// Confidence 報表使用的信賴水準。
const Confidence = 0.95

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// SimReport 機器人模擬報告
type SimReport struct {
	Summary *SummaryReport `json:"Summary"`
	Score   *ScoreReport   `json:"Score"`
	Dist    *DistReport    `json:"Dist"`
	Quant   *QuantReport   `json:"Quant,omitzero"`
	isDone  bool
}

type SummaryReport struct {
	GameID    string  `json:"GameID"`
	Title     string  `json:"Title"`
	Level     int     `json:"Level"`
	Training  bool    `json:"Training"`
	Skill     float64 `json:"Skill"`
	Matches   int     `json:"Matches"`
	Wins      int     `json:"Wins"`
	Abandoned int     `json:"Abandoned"` // 超過輪數上限仍未終局
	WinRate   float64 `json:"WinRate"`
	WinCI     CI      `json:"WinCI"` // Wilson score interval
	MeanXP    float64 `json:"MeanXP"`
	XPCI      CI      `json:"XPCI"` // Student t
	StdXP     float64 `json:"StdXP"`
	MeanSR    float64 `json:"MeanSR"`
	SRCI      CI      `json:"SRCI"` // Student t
	StdSR     float64 `json:"StdSR"`
	MeanDarts float64 `json:"MeanDarts"`
	MeanRound float64 `json:"MeanRounds"`
	MeanNet   float64 `json:"MeanNet"`
	HitRate   float64 `json:"HitRate"`
}

// ScoreReport 逐場累加的原始量
//
// 紀錄時只做整數累加，避免轉型成本。Done() 會將結果整理填入 Summary
type ScoreReport struct {
	XPSum   int `json:"XPSum"`
	XPSqSum int `json:"XPSqSum"` // 平方和
	SRSum   int `json:"SRSum"`
	SRSqSum int `json:"SRSqSum"` // 平方和
	NetSum  int `json:"NetSum"`
	Darts   int `json:"Darts"`
	Hits    int `json:"Hits"`
	Rounds  int `json:"Rounds"`
}

// DistReport SR 區間落點統計
type DistReport struct {
	SRBucket  []string  `json:"SRBucket"`
	SRCollect []int     `json:"SRCollect"`
	SRDist    []float64 `json:"SRDist"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// NewSimReport 建立空報表。
func NewSimReport(gameID, title string, level int, training bool, skill float64) *SimReport {
	return &SimReport{
		Summary: &SummaryReport{
			GameID:   gameID,
			Title:    title,
			Level:    level,
			Training: training,
			Skill:    skill,
		},
		Score: &ScoreReport{},
		Dist: &DistReport{
			SRBucket:  SRBuckets.Labels(),
			SRCollect: make([]int, SRBuckets.Len()),
			SRDist:    make([]float64, SRBuckets.Len()),
		},
	}
}

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
func (s *SimReport) Done() {
	if s.isDone {
		return
	}
	sum := s.Summary
	sum.WinRate, sum.WinCI = wilsonCI(sum.Wins, sum.Matches, Confidence)
	// 放棄的對局沒有結算，只計入勝率分母
	n := sum.Matches - sum.Abandoned
	sum.MeanXP, sum.StdXP, sum.XPCI = meanCI(s.Score.XPSum, s.Score.XPSqSum, n, Confidence)
	sum.MeanSR, sum.StdSR, sum.SRCI = meanCI(s.Score.SRSum, s.Score.SRSqSum, n, Confidence)
	if n > 0 {
		sum.MeanDarts = float64(s.Score.Darts) / float64(n)
		sum.MeanRound = float64(s.Score.Rounds) / float64(n)
		sum.MeanNet = float64(s.Score.NetSum) / float64(n)
	}
	if s.Score.Darts > 0 {
		sum.HitRate = float64(s.Score.Hits) / float64(s.Score.Darts)
	}
	for i, c := range s.Dist.SRCollect {
		if n > 0 {
			s.Dist.SRDist[i] = float64(c) / float64(n)
		}
	}
	s.isDone = true
}

func (s *SimReport) WriteWith(w io.Writer, rep Render[SimReport]) error {
	s.Done()
	return rep.Write(w, s)
}

// StdOut 印出用時與摘要表。
func (s *SimReport) StdOut(w io.Writer, ut time.Duration) {
	s.Done()
	formatDuration(w, ut, s.Summary.Matches)
	sk, sm := s.fmtBasic()
	fmt.Fprintln(w, fmtTable(s.Summary.Title, sk, sm))
	dk, dm := s.fmtDist()
	fmt.Fprintln(w, fmtTable("SR Distribution", dk, dm))
}

// ============================================================
// ** 內部方法 **
// ============================================================

// wilsonCI 二項比例的 Wilson score interval。
func wilsonCI(k, n int, confidence float64) (float64, CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	fn := float64(n)
	p := float64(k) / fn
	z2 := z * z
	den := 1 + z2/fn
	center := (p + z2/(2*fn)) / den
	half := z * math.Sqrt(p*(1-p)/fn+z2/(4*fn*fn)) / den
	return p, CI{Lo: max(0, center-half), Hi: min(1, center+half)}
}

// meanCI 以和與平方和求平均、樣本標準差與 t 分佈信賴區間。
func meanCI(sum, sqSum, n int, confidence float64) (mean, std float64, ci CI) {
	if n == 0 {
		return 0, 0, CI{}
	}
	fn := float64(n)
	mean = float64(sum) / fn
	if n < 2 {
		return mean, 0, CI{Lo: mean, Hi: mean}
	}
	variance := (float64(sqSum) - float64(sum)*float64(sum)/fn) / (fn - 1)
	if variance < 0 {
		variance = 0
	}
	std = math.Sqrt(variance)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: fn - 1}.Quantile(1 - (1-confidence)/2)
	se := std / math.Sqrt(fn)
	return mean, std, CI{Lo: mean - t*se, Hi: mean + t*se}
}

func formatDuration(w io.Writer, d time.Duration, matches int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	mps := int(float64(matches) / sec)
	if sec < 60.0 {
		p.Fprintf(w, "used: %.2f seconds\nmps : %d matches/sec\n", sec, mps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Fprintf(w, "used: %dm %ds\nmps : %d matches/sec\n", m, s, mps)
		return
	}
	p.Fprintf(w, "used: %dh:%dm:%ds\nmps : %d matches/sec\n", h, m, s, mps)
}

func (s *SimReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	sum := s.Summary
	mode := fmt.Sprintf("Level %d", sum.Level)
	if sum.Training {
		mode = "Training"
	}
	basic := map[string]string{
		"Game":           p.Sprintf("%s (%s)", sum.Title, sum.GameID),
		"Mode":           mode,
		"Bot Skill":      p.Sprintf("%.2f", sum.Skill),
		"Matches":        p.Sprintf("%d", sum.Matches),
		"Abandoned":      p.Sprintf("%d", sum.Abandoned),
		"Win Rate":       p.Sprintf("%.2f %%", 100.0*sum.WinRate),
		"Win 95% CI":     p.Sprintf("[%.2f%%,%.2f%%]", 100.0*sum.WinCI.Lo, 100.0*sum.WinCI.Hi),
		"Mean XP":        p.Sprintf("%.1f ± %.1f", sum.MeanXP, (sum.XPCI.Hi-sum.XPCI.Lo)/2),
		"Mean SR":        p.Sprintf("%.1f ± %.1f", sum.MeanSR, (sum.SRCI.Hi-sum.SRCI.Lo)/2),
		"SR P10/P50/P90": "-",
		"Mean Darts":     p.Sprintf("%.1f", sum.MeanDarts),
		"Mean Rounds":    p.Sprintf("%.1f", sum.MeanRound),
		"Mean Net":       p.Sprintf("%.1f", sum.MeanNet),
		"Hit Rate":       p.Sprintf("%.2f %%", 100.0*sum.HitRate),
	}
	if q := s.Quant; q != nil {
		basic["SR P10/P50/P90"] = p.Sprintf("%.0f / %.0f / %.0f", q.SR.P10.Hat, q.SR.P50.Hat, q.SR.P90.Hat)
	}
	keys := []string{"Game", "Mode", "Bot Skill", "Matches", "Abandoned", "Win Rate", "Win 95% CI", "Mean XP", "Mean SR", "SR P10/P50/P90", "Mean Darts", "Mean Rounds", "Mean Net", "Hit Rate"}
	return keys, basic
}

func (s *SimReport) fmtDist() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, len(s.Dist.SRBucket))
	msg := make(map[string]string, len(keys))
	for i, b := range s.Dist.SRBucket {
		keys[i] = b
		msg[b] = p.Sprintf("%d (%.2f%%)", s.Dist.SRCollect[i], 100*s.Dist.SRDist[i])
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2
	totalInner := maxKeyLen + maxValLen + 1
	if tw := runewidth.StringWidth(title); tw > totalInner {
		maxValLen += tw - totalInner
		totalInner = tw
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	titleW := runewidth.StringWidth(title)
	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var b strings.Builder
	b.WriteString(top)
	b.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	b.WriteString(divider)
	for _, k := range keys {
		b.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	b.WriteString(divider)
	return b.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
