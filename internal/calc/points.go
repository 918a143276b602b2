package calc

import "github.com/dshills/medscore/internal/risk"

const (
	qsofaRespRate = 22
	qsofaSystolic = 100
	curbUrea      = 20.0 // mg/dL
	curbRespRate  = 30
	curbSystolic  = 90
	curbDiastolic = 60
	curbAge       = 65
	vascAgeOld    = 75
	vascAgeMid    = 65
	heartAgeOld   = 65
	heartAgeMid   = 45
)

// QSOFA scores altered mentation, respiratory rate >= 22, and systolic BP <= 100.
func QSOFA(v risk.Values) (float64, []risk.Contribution) {
	var t tally
	t.flag("altered mentation", v.Bool("altered_mentation"), 1)
	t.flag("respiratory rate >= 22/min", v.Int("respiratory_rate") >= qsofaRespRate, 1)
	t.flag("systolic BP <= 100 mmHg", v.Int("systolic_bp") <= qsofaSystolic, 1)
	return t.result()
}

// CHA2DS2VASc sums stroke risk factors in atrial fibrillation.
// Female sex is counted regardless of age.
func CHA2DS2VASc(v risk.Values) (float64, []risk.Contribution) {
	var t tally
	t.flag("congestive heart failure", v.Bool("chf"), 1)
	t.flag("hypertension", v.Bool("hypertension"), 1)

	age := v.Int("age")
	switch {
	case age >= vascAgeOld:
		t.add("age >= 75", 2)
	case age >= vascAgeMid:
		t.add("age 65-74", 1)
	default:
		t.add("age < 65", 0)
	}

	t.flag("diabetes", v.Bool("diabetes"), 1)
	t.flag("prior stroke/TIA/thromboembolism", v.Bool("stroke"), 2)
	t.flag("vascular disease", v.Bool("vascular_disease"), 1)
	t.flag("female sex", v.Bool("female"), 1)
	return t.result()
}

// GCS sums the eye, verbal, and motor responses.
func GCS(v risk.Values) (float64, []risk.Contribution) {
	var t tally
	for _, name := range []string{"eye_response", "verbal_response", "motor_response"} {
		n := v.Int(name)
		t.add(sub(name, n), float64(n))
	}
	return t.result()
}

// CURB65 scores confusion, urea > 20 mg/dL, respiratory rate >= 30,
// low blood pressure, and age >= 65.
func CURB65(v risk.Values) (float64, []risk.Contribution) {
	var t tally
	t.flag("confusion", v.Bool("confusion"), 1)
	t.flag("urea > 20 mg/dL", v.Real("urea") > curbUrea, 1)
	t.flag("respiratory rate >= 30/min", v.Int("respiratory_rate") >= curbRespRate, 1)
	lowBP := v.Int("systolic_bp") < curbSystolic || v.Int("diastolic_bp") <= curbDiastolic
	t.flag("systolic BP < 90 or diastolic BP <= 60 mmHg", lowBP, 1)
	t.flag("age >= 65", v.Int("age") >= curbAge, 1)
	return t.result()
}

// HEART sums history, ECG, risk factor, and troponin sub-scores plus an age sub-score.
func HEART(v risk.Values) (float64, []risk.Contribution) {
	var t tally
	for _, name := range []string{"history", "ecg"} {
		n := v.Int(name)
		t.add(sub(name, n), float64(n))
	}

	age := v.Int("age")
	switch {
	case age >= heartAgeOld:
		t.add("age >= 65", 2)
	case age >= heartAgeMid:
		t.add("age 45-64", 1)
	default:
		t.add("age < 45", 0)
	}

	for _, name := range []string{"risk_factors", "troponin"} {
		n := v.Int(name)
		t.add(sub(name, n), float64(n))
	}
	return t.result()
}

// NIHSSItems lists the stroke scale items in examination order.
var NIHSSItems = []string{
	"loc", "loc_questions", "loc_commands", "gaze", "visual", "facial_palsy",
	"motor_arm_left", "motor_arm_right", "motor_leg_left", "motor_leg_right",
	"limb_ataxia", "sensory", "language", "dysarthria", "extinction",
}

// NIHSS sums the 15 item scores.
func NIHSS(v risk.Values) (float64, []risk.Contribution) {
	var t tally
	for _, name := range NIHSSItems {
		n := v.Int(name)
		t.add(sub(name, n), float64(n))
	}
	return t.result()
}
