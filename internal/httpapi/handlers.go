package httpapi

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/school-discipline/internal/apperr"
	"github.com/Spok95/school-discipline/internal/models"
)

func queryInt(c *gin.Context, name string, def int) (int, error) {
	s := c.Query(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.Invalid(name, name+" must be a number")
	}
	return n, nil
}

func (h *handlers) login(c *gin.Context) {
	var in models.Credentials
	if err := bindJSON(c, &in); err != nil {
		respondErr(c, err)
		return
	}
	resp, err := h.Users.Login(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) refresh(c *gin.Context) {
	resp, err := h.Users.Refresh(c.Request.Context(), sessionOf(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) me(c *gin.Context) {
	sess := sessionOf(c)
	u, err := h.Users.Me(c.Request.Context(), sess)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "flags": sess.Flags()})
}

func (h *handlers) currentWeek(c *gin.Context) {
	key, err := h.Rankings.CurrentWeek()
	if err != nil {
		// каникулы: текущей учебной недели нет
		c.JSON(http.StatusOK, gin.H{"weekKey": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"weekKey": key})
}

func (h *handlers) listRules(c *gin.Context) {
	rules, err := h.Rules.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// --- roster ---

func (h *handlers) listClasses(c *gin.Context) {
	grade, err := queryInt(c, "grade", 0)
	if err != nil {
		respondErr(c, err)
		return
	}
	classes, err := h.Roster.ListClasses(c.Request.Context(), sessionOf(c), grade)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(classes))
}

func (h *handlers) createClass(c *gin.Context) {
	var in models.NewClass
	if err := bindJSON(c, &in); err != nil {
		respondErr(c, err)
		return
	}
	cls, err := h.Roster.CreateClass(c.Request.Context(), sessionOf(c), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, cls)
}

func (h *handlers) listStudents(c *gin.Context) {
	sts, err := h.Roster.ListStudents(c.Request.Context(), sessionOf(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(sts))
}

func (h *handlers) createStudent(c *gin.Context) {
	var in models.NewStudent
	if err := bindJSON(c, &in); err != nil {
		respondErr(c, err)
		return
	}
	st, err := h.Roster.CreateStudent(c.Request.Context(), sessionOf(c), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// --- records ---

func (h *handlers) listRecords(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		respondErr(c, err)
		return
	}
	f := models.RecordFilter{
		WeekKey:   c.Query("week"),
		StudentID: c.Query("studentId"),
		Limit:     limit,
	}
	if ids := c.QueryArray("classId"); len(ids) > 0 {
		f.ClassIDs = ids
	}
	recs, err := h.Records.ListRecords(c.Request.Context(), sessionOf(c), f)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(recs))
}

func (h *handlers) createRecord(c *gin.Context) {
	var in models.NewRecord
	if err := bindJSON(c, &in); err != nil {
		respondErr(c, err)
		return
	}
	rec, err := h.Records.CreateRecord(c.Request.Context(), sessionOf(c), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *handlers) getRecord(c *gin.Context) {
	rec, err := h.Records.GetRecord(c.Request.Context(), sessionOf(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handlers) createCorrection(c *gin.Context) {
	var in models.NewCorrection
	if err := bindJSON(c, &in); err != nil {
		respondErr(c, err)
		return
	}
	rec, err := h.Records.CreateCorrection(c.Request.Context(), sessionOf(c), c.Param("id"), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// --- rankings ---

func (h *handlers) weeklyRanking(c *gin.Context) {
	grade, err := queryInt(c, "grade", 0)
	if err != nil {
		respondErr(c, err)
		return
	}
	b, err := h.Rankings.WeeklyRanking(c.Request.Context(), sessionOf(c), c.Param("week"), grade)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *handlers) finalize(c *gin.Context) {
	grade, err := queryInt(c, "grade", 0)
	if err != nil {
		respondErr(c, err)
		return
	}
	b, err := h.Rankings.Finalize(c.Request.Context(), sessionOf(c), c.Param("week"), grade)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *handlers) exportRanking(c *gin.Context) {
	grade, err := queryInt(c, "grade", 0)
	if err != nil {
		respondErr(c, err)
		return
	}
	raw, name, err := h.Rankings.Export(c.Request.Context(), sessionOf(c), c.Param("week"), grade)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, xlsxMime, raw)
}

// --- users ---

func (h *handlers) listUsers(c *gin.Context) {
	users, err := h.Users.ListUsers(c.Request.Context(), sessionOf(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(users))
}

func (h *handlers) createUser(c *gin.Context) {
	var in models.NewUser
	if err := bindJSON(c, &in); err != nil {
		respondErr(c, err)
		return
	}
	u, err := h.Users.CreateUser(c.Request.Context(), sessionOf(c), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *handlers) putClaims(c *gin.Context) {
	var in models.SetClaimsInput
	if err := bindJSON(c, &in); err != nil {
		respondErr(c, err)
		return
	}
	in.UID = c.Param("id")
	if err := h.Users.SetUserClaims(c.Request.Context(), sessionOf(c), in); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// nonNil keeps empty lists as [] in JSON.
func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
