// Package rules holds the fixed rule catalog that syncRules writes to storage.
package rules

import "github.com/Spok95/school-discipline/internal/models"

// Catalog returns a fresh copy of the rule catalog. VPnnn are demerits (negative
// points), KTnnn are merits.
func Catalog() []models.Rule {
	out := make([]models.Rule, len(catalog))
	copy(out, catalog)
	return out
}

var catalog = []models.Rule{
	{Code: "VP001", Category: "Attendance", Description: "Late to first period", Type: models.Demerit, Points: -2},
	{Code: "VP002", Category: "Attendance", Description: "Late after break", Type: models.Demerit, Points: -1},
	{Code: "VP003", Category: "Attendance", Description: "Unexcused absence (half day)", Type: models.Demerit, Points: -5},
	{Code: "VP004", Category: "Attendance", Description: "Unexcused absence (full day)", Type: models.Demerit, Points: -10},
	{Code: "VP005", Category: "Attendance", Description: "Leaving class without permission", Type: models.Demerit, Points: -5},
	{Code: "VP006", Category: "Attendance", Description: "Skipping a period", Type: models.Demerit, Points: -5},
	{Code: "VP007", Category: "Attendance", Description: "Skipping flag ceremony", Type: models.Demerit, Points: -3},
	{Code: "VP008", Category: "Attendance", Description: "Late to flag ceremony", Type: models.Demerit, Points: -1},
	{Code: "VP009", Category: "Attendance", Description: "Absent from scheduled extra class", Type: models.Demerit, Points: -3},
	{Code: "VP010", Category: "Attendance", Description: "Forged absence note", Type: models.Demerit, Points: -15},
	{Code: "VP011", Category: "Uniform", Description: "Missing school badge", Type: models.Demerit, Points: -1},
	{Code: "VP012", Category: "Uniform", Description: "Wrong uniform on weekday", Type: models.Demerit, Points: -2},
	{Code: "VP013", Category: "Uniform", Description: "Missing red scarf / youth badge", Type: models.Demerit, Points: -1},
	{Code: "VP014", Category: "Uniform", Description: "Non-uniform footwear", Type: models.Demerit, Points: -1},
	{Code: "VP015", Category: "Uniform", Description: "Improper hairstyle or dyed hair", Type: models.Demerit, Points: -2},
	{Code: "VP016", Category: "Uniform", Description: "Excessive jewelry or makeup", Type: models.Demerit, Points: -1},
	{Code: "VP017", Category: "Uniform", Description: "Missing PE uniform", Type: models.Demerit, Points: -1},
	{Code: "VP018", Category: "Uniform", Description: "Untucked shirt", Type: models.Demerit, Points: -1},
	{Code: "VP019", Category: "Classroom", Description: "Talking during lesson", Type: models.Demerit, Points: -1},
	{Code: "VP020", Category: "Classroom", Description: "Using phone in class", Type: models.Demerit, Points: -3},
	{Code: "VP021", Category: "Classroom", Description: "Eating in class", Type: models.Demerit, Points: -1},
	{Code: "VP022", Category: "Classroom", Description: "Sleeping in class", Type: models.Demerit, Points: -1},
	{Code: "VP023", Category: "Classroom", Description: "Not preparing lesson materials", Type: models.Demerit, Points: -1},
	{Code: "VP024", Category: "Classroom", Description: "Missing homework", Type: models.Demerit, Points: -2},
	{Code: "VP025", Category: "Classroom", Description: "Disrupting lesson", Type: models.Demerit, Points: -3},
	{Code: "VP026", Category: "Classroom", Description: "Refusing teacher instruction", Type: models.Demerit, Points: -5},
	{Code: "VP027", Category: "Classroom", Description: "Copying during test", Type: models.Demerit, Points: -5},
	{Code: "VP028", Category: "Classroom", Description: "Using unauthorized materials in exam", Type: models.Demerit, Points: -10},
	{Code: "VP029", Category: "Classroom", Description: "Leaving seat without permission", Type: models.Demerit, Points: -1},
	{Code: "VP030", Category: "Classroom", Description: "Doing other subjects in class", Type: models.Demerit, Points: -1},
	{Code: "VP031", Category: "Hygiene", Description: "Littering in classroom", Type: models.Demerit, Points: -1},
	{Code: "VP032", Category: "Hygiene", Description: "Littering in schoolyard", Type: models.Demerit, Points: -2},
	{Code: "VP033", Category: "Hygiene", Description: "Not doing duty cleaning", Type: models.Demerit, Points: -3},
	{Code: "VP034", Category: "Hygiene", Description: "Dirty classroom at inspection", Type: models.Demerit, Points: -2},
	{Code: "VP035", Category: "Hygiene", Description: "Writing on desks or walls", Type: models.Demerit, Points: -3},
	{Code: "VP036", Category: "Hygiene", Description: "Spitting in public areas", Type: models.Demerit, Points: -2},
	{Code: "VP037", Category: "Hygiene", Description: "Misusing restroom", Type: models.Demerit, Points: -2},
	{Code: "VP038", Category: "Hygiene", Description: "Leaving lights or fans on", Type: models.Demerit, Points: -1},
	{Code: "VP039", Category: "Conduct", Description: "Rude language", Type: models.Demerit, Points: -3},
	{Code: "VP040", Category: "Conduct", Description: "Disrespect to teacher or staff", Type: models.Demerit, Points: -10},
	{Code: "VP041", Category: "Conduct", Description: "Teasing classmates", Type: models.Demerit, Points: -3},
	{Code: "VP042", Category: "Conduct", Description: "Fighting", Type: models.Demerit, Points: -15},
	{Code: "VP043", Category: "Conduct", Description: "Inciting a fight", Type: models.Demerit, Points: -10},
	{Code: "VP044", Category: "Conduct", Description: "Bullying", Type: models.Demerit, Points: -15},
	{Code: "VP045", Category: "Conduct", Description: "Stealing property", Type: models.Demerit, Points: -15},
	{Code: "VP046", Category: "Conduct", Description: "Damaging school property", Type: models.Demerit, Points: -10},
	{Code: "VP047", Category: "Conduct", Description: "Gambling", Type: models.Demerit, Points: -10},
	{Code: "VP048", Category: "Conduct", Description: "Smoking or vaping", Type: models.Demerit, Points: -15},
	{Code: "VP049", Category: "Conduct", Description: "Bringing alcohol", Type: models.Demerit, Points: -15},
	{Code: "VP050", Category: "Conduct", Description: "Lying to teacher", Type: models.Demerit, Points: -5},
	{Code: "VP051", Category: "Conduct", Description: "Cyberbullying", Type: models.Demerit, Points: -15},
	{Code: "VP052", Category: "Conduct", Description: "Posting offensive content about school", Type: models.Demerit, Points: -10},
	{Code: "VP053", Category: "Safety", Description: "Climbing fences or windows", Type: models.Demerit, Points: -5},
	{Code: "VP054", Category: "Safety", Description: "Riding bicycle in schoolyard", Type: models.Demerit, Points: -2},
	{Code: "VP055", Category: "Safety", Description: "Parking in wrong area", Type: models.Demerit, Points: -1},
	{Code: "VP056", Category: "Safety", Description: "Bringing dangerous objects", Type: models.Demerit, Points: -15},
	{Code: "VP057", Category: "Safety", Description: "Playing with fire or firecrackers", Type: models.Demerit, Points: -15},
	{Code: "VP058", Category: "Safety", Description: "Not wearing helmet on motorbike", Type: models.Demerit, Points: -5},
	{Code: "VP059", Category: "Safety", Description: "Leaving school during hours without permission", Type: models.Demerit, Points: -10},
	{Code: "VP060", Category: "Safety", Description: "Unsafe play in corridors", Type: models.Demerit, Points: -2},
	{Code: "KT001", Category: "Study", Description: "Excellent score on test", Type: models.Merit, Points: 3},
	{Code: "KT002", Category: "Study", Description: "Perfect score on test", Type: models.Merit, Points: 5},
	{Code: "KT003", Category: "Study", Description: "Answering actively in class", Type: models.Merit, Points: 1},
	{Code: "KT004", Category: "Study", Description: "Full week homework completed", Type: models.Merit, Points: 2},
	{Code: "KT005", Category: "Study", Description: "Helping classmate with study", Type: models.Merit, Points: 2},
	{Code: "KT006", Category: "Study", Description: "Best-improved student of the month", Type: models.Merit, Points: 5},
	{Code: "KT007", Category: "Study", Description: "District academic award", Type: models.Merit, Points: 10},
	{Code: "KT008", Category: "Study", Description: "Provincial academic award", Type: models.Merit, Points: 20},
	{Code: "KT009", Category: "Study", Description: "National academic award", Type: models.Merit, Points: 30},
	{Code: "KT010", Category: "Study", Description: "Science project accepted", Type: models.Merit, Points: 10},
	{Code: "KT011", Category: "Activities", Description: "Participating in school event", Type: models.Merit, Points: 2},
	{Code: "KT012", Category: "Activities", Description: "Performing at school event", Type: models.Merit, Points: 3},
	{Code: "KT013", Category: "Activities", Description: "Winning school competition", Type: models.Merit, Points: 5},
	{Code: "KT014", Category: "Activities", Description: "Winning district competition", Type: models.Merit, Points: 10},
	{Code: "KT015", Category: "Activities", Description: "Volunteering for community work", Type: models.Merit, Points: 3},
	{Code: "KT016", Category: "Activities", Description: "Organizing class activity", Type: models.Merit, Points: 3},
	{Code: "KT017", Category: "Activities", Description: "Blood donation or charity drive", Type: models.Merit, Points: 5},
	{Code: "KT018", Category: "Activities", Description: "Sports team representation", Type: models.Merit, Points: 5},
	{Code: "KT019", Category: "Conduct", Description: "Returning lost property", Type: models.Merit, Points: 5},
	{Code: "KT020", Category: "Conduct", Description: "Helping staff", Type: models.Merit, Points: 2},
	{Code: "KT021", Category: "Conduct", Description: "Reporting a safety issue", Type: models.Merit, Points: 3},
	{Code: "KT022", Category: "Conduct", Description: "Exemplary behavior commended by teacher", Type: models.Merit, Points: 3},
	{Code: "KT023", Category: "Conduct", Description: "Stopping a conflict", Type: models.Merit, Points: 5},
	{Code: "KT024", Category: "Conduct", Description: "Good deed recognized by community", Type: models.Merit, Points: 5},
	{Code: "KT025", Category: "Hygiene", Description: "Classroom cleanest at inspection", Type: models.Merit, Points: 3},
	{Code: "KT026", Category: "Hygiene", Description: "Extra cleaning duty", Type: models.Merit, Points: 2},
	{Code: "KT027", Category: "Hygiene", Description: "Planting or caring for school garden", Type: models.Merit, Points: 2},
	{Code: "KT028", Category: "Hygiene", Description: "Recycling initiative", Type: models.Merit, Points: 3},
	{Code: "KT029", Category: "Attendance", Description: "Perfect attendance for the week", Type: models.Merit, Points: 2},
	{Code: "KT030", Category: "Attendance", Description: "Perfect attendance for the month", Type: models.Merit, Points: 5},
}
