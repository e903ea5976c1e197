package service

import (
	"fmt"

	"memonotes/internal/curriculum"
	"memonotes/internal/model"
)

// DefaultStyleExamples 新工作区的默认评语风格示例
const DefaultStyleExamples = `EXEMPLE 1 (Aspectes Personals):
"Al llarg d'aquest trimestre hem observat un bon progrés tant en el desenvolupament acadèmic com personal. S'ha mostrat treballador, participatiu i constant, i manté una actitud positiva davant les tasques. En l'àmbit social és col·laborador i respecta les normes del grup."

EXEMPLE 2 (Llengua Catalana):
"Ha assolit força bé els continguts treballats. Destaca un progrés significatiu en la velocitat lectora i la comprensió. En l'escriptura està consolidant els aspectes gramaticals, tot i que encara li costa separar les frases amb punts."`

type seedCourse struct {
	name     string
	subjects []seedSubject
}

type seedSubject struct {
	name  string
	topic string
	// content 为空时按 topic 生成默认教学内容
	content map[model.TermID]string
}

var seedSubjects = []string{
	"LLENGUA CATALANA",
	"MATEMÀTIQUES",
	"CONEIXEMENT DEL MEDI",
	"PLÀSTICA",
	"ANGLÈS",
	"EDUCACIÓ FÍSICA",
}

var seedCourses = []seedCourse{
	{
		name: "TERCER",
		subjects: []seedSubject{
			{name: "LLENGUA CATALANA", content: map[model.TermID]string{
				model.Term1:     "1. Tipologies textuals: la carta i la descripció.\n2. Ortografia: accentuació.\n3. Lectura en veu alta i comprensiva.",
				model.Term2:     "1. Tipologies textuals: el conte i la notícia.\n2. Gramàtica: el nom i l'adjectiu.\n3. Dictats preparats.",
				model.Term3:     "1. Tipologies textuals: el poema i el teatre.\n2. Els verbs.\n3. Expressió oral i exposicions.",
				model.TermFinal: "Consolidació de la lectoescriptura i expressió oral.",
			}},
			{name: "MATEMÀTIQUES", topic: "Numeració i Càlcul"},
			{name: "CONEIXEMENT DEL MEDI", topic: "Entorn i Natura"},
			{name: "PLÀSTICA", topic: "Art i Color"},
			{name: "EDUCACIÓ FÍSICA", topic: "Esport i Salut"},
		},
	},
	{
		name: "SEGON",
		subjects: []seedSubject{
			{name: "LLENGUA CATALANA", topic: "Lectoescriptura"},
			{name: "MATEMÀTIQUES", topic: "Nombres"},
			{name: "CONEIXEMENT DEL MEDI", topic: "Entorn"},
		},
	},
	{name: "QUART"},
}

func defaultContent(topic string, term model.TermID) string {
	if term == model.TermFinal {
		return fmt.Sprintf("Resum global de %s durant tot el curs.", topic)
	}
	return fmt.Sprintf("Continguts treballats al %s sobre %s:\n"+
		"1. Introducció i conceptes bàsics.\n"+
		"2. Activitats pràctiques i manipulatives.\n"+
		"3. Treball cooperatiu i individual.\n"+
		"4. Ús de recursos digitals.\n"+
		"5. Avaluació del progrés.", term.Label(), topic)
}

// NewSeedSnapshot 构造新教师工作区的初始目录：常用科目、三个课程及其教学内容、一个空教学班
func NewSeedSnapshot() *model.AppSnapshot {
	snap := model.NewSnapshot()
	snap.StyleExamples = DefaultStyleExamples

	ids := make(map[string]string, len(seedSubjects))
	for _, name := range seedSubjects {
		sub, _ := curriculum.AddSubject(snap, name)
		ids[name] = sub.ID
	}

	var firstCourseID string
	for _, sc := range seedCourses {
		course, _ := curriculum.AddCourse(snap, sc.name)
		if firstCourseID == "" {
			firstCourseID = course.ID
		}
		for _, ss := range sc.subjects {
			subjectID := ids[ss.name]
			_ = curriculum.AssignSubjectToCourse(snap, course.ID, subjectID)
			for _, term := range model.Terms {
				text := ss.content[term]
				if text == "" {
					text = defaultContent(ss.topic, term)
				}
				_ = curriculum.SetWorkedContent(snap, course.ID, subjectID, term, text)
			}
		}
	}

	_, _ = curriculum.AddClassGroup(snap, firstCourseID, "Grup A")
	return snap
}
